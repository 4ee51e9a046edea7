package dynamostore

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ember_server/models"
)

func (s *Store) InsertReport(ctx context.Context, r models.Report) error {
	return s.putItem(ctx, models.ReportsTable, r)
}

type reportKeyRecord struct {
	ReportID string `dynamodbav:"reportId"`
}

func (s *Store) DeleteReportsByReporter(ctx context.Context, reporterID string) error {
	var records []reportKeyRecord
	err := s.scan(ctx, models.ReportsTable,
		"reporterId = :reporterId",
		map[string]types.AttributeValue{
			":reporterId": &types.AttributeValueMemberS{Value: reporterID},
		},
		nil,
		&records)
	if err != nil {
		return err
	}
	keys := make([]map[string]types.AttributeValue, 0, len(records))
	for _, r := range records {
		keys = append(keys, map[string]types.AttributeValue{
			"reportId": &types.AttributeValueMemberS{Value: r.ReportID},
		})
	}
	return s.batchDelete(ctx, models.ReportsTable, keys)
}
