package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBootstrapLedger records which provisioning calls run went through.
type fakeBootstrapLedger struct {
	tokenErr error
	topicErr error

	createdToken bool
	createdTopic bool
	associated   string
	burned       int64
}

func (f *fakeBootstrapLedger) CreateReputationToken(ctx context.Context, name, symbol string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	f.createdToken = true
	return "0.0.5001", nil
}

func (f *fakeBootstrapLedger) CreateAuditTopic(ctx context.Context, memo string) (string, error) {
	if f.topicErr != nil {
		return "", f.topicErr
	}
	f.createdTopic = true
	return "0.0.5002", nil
}

func (f *fakeBootstrapLedger) AssociateReputation(ctx context.Context, account, accountKey string) (string, error) {
	f.associated = account
	return "0.0.10@1.2", nil
}

func (f *fakeBootstrapLedger) BurnReputation(ctx context.Context, units int64) (string, error) {
	f.burned = units
	return "0.0.10@3.4", nil
}

func TestRun_NoActionSelected(t *testing.T) {
	lgr := &fakeBootstrapLedger{}

	err := run(context.Background(), lgr, options{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to do")
	assert.False(t, lgr.createdToken)
}

func TestRun_CreateTokenAndTopic(t *testing.T) {
	lgr := &fakeBootstrapLedger{}
	var out bytes.Buffer

	err := run(context.Background(), lgr, options{
		createToken: true,
		tokenName:   "Haki Reputation",
		tokenSymbol: "HAKIREP",
		createTopic: true,
		topicMemo:   "audit",
	}, &out)
	require.NoError(t, err)

	assert.True(t, lgr.createdToken)
	assert.True(t, lgr.createdTopic)
	assert.Contains(t, out.String(), "HEDERA_REPUTATION_TOKEN_ID=0.0.5001")
	assert.Contains(t, out.String(), "HEDERA_AUDIT_TOPIC_ID=0.0.5002")
}

func TestRun_TokenFailureStopsProvisioning(t *testing.T) {
	lgr := &fakeBootstrapLedger{tokenErr: errors.New("insufficient operator balance")}
	var out bytes.Buffer

	err := run(context.Background(), lgr, options{createToken: true, createTopic: true}, &out)
	require.Error(t, err)
	assert.False(t, lgr.createdTopic)
	assert.Empty(t, out.String())
}

func TestRun_AssociateRequiresKey(t *testing.T) {
	lgr := &fakeBootstrapLedger{}

	err := run(context.Background(), lgr, options{associate: "0.0.31337"}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "associate-key")
	assert.Empty(t, lgr.associated)
}

func TestRun_AssociateAndBurn(t *testing.T) {
	lgr := &fakeBootstrapLedger{}
	var out bytes.Buffer

	err := run(context.Background(), lgr, options{
		associate:    "0.0.31337",
		associateKey: "302e0201...",
		burn:         25,
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "0.0.31337", lgr.associated)
	assert.Equal(t, int64(25), lgr.burned)
	assert.Contains(t, out.String(), "associated 0.0.31337")
	assert.Contains(t, out.String(), "burned 25 units")
}

func TestRun_NegativeBurnRejected(t *testing.T) {
	lgr := &fakeBootstrapLedger{}

	err := run(context.Background(), lgr, options{burn: -5}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Zero(t, lgr.burned)
}
