package verification

import (
	"fmt"
	"html"
	"time"

	"github.com/go-account-api/internal/infrastructure/mail"
)

func verificationEmail(to, code, challengeID string, ttl time.Duration) mail.Message {
	minutes := int(ttl.Minutes())
	return mail.Message{
		To:      to,
		Subject: "Verify your email",
		Text:    fmt.Sprintf("Your verification code is: %s. This code expires in %d minutes.", code, minutes),
		HTML: fmt.Sprintf(`<div style="font-family:sans-serif">
  <h2>Verify your email</h2>
  <p>Your verification code is:</p>
  <p style="font-size:28px;letter-spacing:6px"><strong>%s</strong></p>
  <p>This code expires in %d minutes.</p>
  <p style="color:#888;font-size:12px">Reference: %s</p>
</div>`, html.EscapeString(code), minutes, html.EscapeString(challengeID)),
	}
}
