package keystore

import (
	"sync"

	"ember_server/crypto"
)

// SecretCache memoizes derived shared secrets per unordered user pair so
// each conversation performs the ECDH only once. Clear on logout.
type SecretCache struct {
	mu      sync.Mutex
	secrets map[string]string
}

func NewSecretCache() *SecretCache {
	return &SecretCache{secrets: make(map[string]string)}
}

func pairKey(userA, userB string) string {
	if userA < userB {
		return userA + ":" + userB
	}
	return userB + ":" + userA
}

// SharedSecret returns the cached secret for the pair, deriving and
// caching it on first use.
func (c *SecretCache) SharedSecret(myUserID, theirUserID, myPrivateKey, theirPublicKey string) (string, error) {
	key := pairKey(myUserID, theirUserID)

	c.mu.Lock()
	cached, ok := c.secrets[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	secret, err := crypto.DeriveSharedSecret(myPrivateKey, theirPublicKey)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.secrets[key] = secret
	c.mu.Unlock()
	return secret, nil
}

// Clear drops all cached secrets.
func (c *SecretCache) Clear() {
	c.mu.Lock()
	c.secrets = make(map[string]string)
	c.mu.Unlock()
}
