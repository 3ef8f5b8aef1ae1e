package infra

import "errors"

// ExternalInfraManager targets a scheduler started outside the tests.
// Tokens are signed with the private key matching the instance's
// --auth-public-key, when one is given.
type ExternalInfraManager struct {
	url    string
	issuer *TokenIssuer
}

func NewExternalInfraManager(url string, issuer *TokenIssuer) *ExternalInfraManager {
	return &ExternalInfraManager{url: url, issuer: issuer}
}

func (e *ExternalInfraManager) StartScheduler(_ SchedulerConfig) (string, error) {
	return e.url, nil
}

func (e *ExternalInfraManager) StopScheduler() error { return nil }

func (e *ExternalInfraManager) GenerateToken(subject string) (string, error) {
	if e.issuer == nil {
		return "", errors.New("no private key configured")
	}
	return e.issuer.GenerateToken(subject, TokenTTL)
}
