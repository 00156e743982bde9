// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the subset of the SES v2 client used by SESChannel.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESChannel sends email through AWS SES v2.
type SESChannel struct {
	client  SESAPI
	sender  string
	timeout time.Duration
}

// NewSESChannel builds an SES client for region. Empty static credentials
// fall back to the default AWS credential chain.
func NewSESChannel(ctx context.Context, region, accessKeyID, secretAccessKey, sender string, timeout time.Duration) (*SESChannel, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewSESChannelWithClient(sesv2.NewFromConfig(cfg), sender, timeout), nil
}

// NewSESChannelWithClient wraps an existing client.
func NewSESChannelWithClient(client SESAPI, sender string, timeout time.Duration) *SESChannel {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SESChannel{client: client, sender: sender, timeout: timeout}
}

// Name returns the channel identifier.
func (c *SESChannel) Name() string {
	return "ses"
}

// Send delivers one email with SES SendEmail.
func (c *SESChannel) Send(ctx context.Context, params *SendParams) (*DeliveryResult, error) {
	result := &DeliveryResult{Recipient: params.Recipient}

	if params.Recipient == "" {
		return fail(result, &DeliveryError{Channel: c.Name(), Code: ErrorCodeInvalidConfig, Err: ErrInvalidRecipient})
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(c.sender),
		Destination:      &types.Destination{ToAddresses: []string{params.Recipient}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(params.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(params.BodyHTML), Charset: aws.String("UTF-8")},
					Text: &types.Content{Data: aws.String(params.BodyText), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("kind"), Value: aws.String(params.Kind)},
		},
	})
	if err != nil {
		return fail(result, &DeliveryError{Channel: c.Name(), Code: classifySESError(err), Err: err})
	}

	if out != nil && out.MessageId != nil {
		result.ExternalID = *out.MessageId
	}
	now := time.Now()
	result.Success = true
	result.DeliveredAt = &now
	return result, nil
}

// classifySESError maps SES API error codes onto delivery error codes.
func classifySESError(err error) string {
	var apiErr interface{ ErrorCode() string }
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "TooManyRequestsException", "LimitExceededException", "SendingPausedException":
			return ErrorCodeRateLimited
		case "AccessDeniedException", "UnrecognizedClientException", "InvalidClientTokenId":
			return ErrorCodeAuthFailed
		case "MessageRejected", "MailFromDomainNotVerifiedException", "NotFoundException":
			return ErrorCodeRecipientNotFound
		case "BadRequestException":
			return ErrorCodeInvalidConfig
		}
	}
	return classifyHTTPError(err)
}
