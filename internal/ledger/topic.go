package ledger

import (
	"context"
	"fmt"

	"github.com/hashgraph/hedera-sdk-go/v2"

	"github.com/haki-platform/haki-backend/internal/logger"
)

// CreateAuditTopic creates the consensus topic used for tamper-evident
// audit records. Run once during platform setup.
func (c *Client) CreateAuditTopic(ctx context.Context, memo string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := hedera.NewTopicCreateTransaction().
		SetTopicMemo(memo).
		Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: create topic: %w", err)
	}

	receipt, err := resp.GetReceipt(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: create topic receipt: %w", err)
	}
	if receipt.Status != hedera.StatusSuccess || receipt.TopicID == nil {
		return "", fmt.Errorf("ledger: create topic failed with status %s", receipt.Status)
	}

	logger.Log.WithField("topic_id", receipt.TopicID.String()).Info("ledger: audit topic created")
	return receipt.TopicID.String(), nil
}

// SubmitAuditMessage appends a message to the audit topic. The topic is
// append-only and timestamp-ordered, so a stored input hash can later be
// checked against what was actually analyzed.
func (c *Client) SubmitAuditMessage(ctx context.Context, message []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !c.hasTopic {
		return "", fmt.Errorf("ledger: audit topic is not configured")
	}

	resp, err := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(c.topicID).
		SetMessage(message).
		Execute(c.sdk)
	if err != nil {
		return "", fmt.Errorf("ledger: submit audit message: %w", err)
	}

	return c.confirm(resp, "submit audit message")
}
