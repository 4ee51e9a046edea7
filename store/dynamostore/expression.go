package dynamostore

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// updateExpression accumulates SET and REMOVE clauses for an UpdateItem
// call. Attribute names are always aliased so reserved words like
// "status" and "name" never leak into the expression.
type updateExpression struct {
	sets    []string
	removes []string
	values  map[string]types.AttributeValue
	names   map[string]string
}

func newUpdateExpression() *updateExpression {
	return &updateExpression{
		values: map[string]types.AttributeValue{},
		names:  map[string]string{},
	}
}

func (e *updateExpression) set(attr string, value types.AttributeValue) {
	e.names["#"+attr] = attr
	e.values[":"+attr] = value
	e.sets = append(e.sets, "#"+attr+" = :"+attr)
}

func (e *updateExpression) remove(attr string) {
	e.names["#"+attr] = attr
	e.removes = append(e.removes, "#"+attr)
}

func (e *updateExpression) empty() bool {
	return len(e.sets) == 0 && len(e.removes) == 0
}

func (e *updateExpression) expression() string {
	var parts []string
	if len(e.sets) > 0 {
		parts = append(parts, "SET "+strings.Join(e.sets, ", "))
	}
	if len(e.removes) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(e.removes, ", "))
	}
	return strings.Join(parts, " ")
}
