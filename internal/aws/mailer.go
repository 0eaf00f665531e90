package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESSender delivers HTML email through SES. It is the concrete email
// transport behind the notification mailer.
type SESSender struct {
	SES  SESAPI
	From string
}

func NewSESSender(sesClient SESAPI, from string) *SESSender {
	return &SESSender{
		SES:  sesClient,
		From: from,
	}
}

// SendEmail attempts a single delivery of an HTML email.
func (s *SESSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &s.From,
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: &subject},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: &htmlBody},
				},
			},
		},
	}

	_, err := s.SES.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
