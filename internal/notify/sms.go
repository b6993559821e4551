package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/orizaruk/TeleWatch/internal/config"
)

// twilioAPIBase is swapped in tests.
var twilioAPIBase = "https://api.twilio.com"

// smsMaxLen keeps an alert to a few SMS segments.
const smsMaxLen = 400

// SMS delivers alerts as text messages through the Twilio REST API.
type SMS struct {
	AccountSID, AuthToken, From, To string
}

func NewSMS(cfg config.TwilioConfig) (*SMS, error) {
	if err := checkTwilio("sms", cfg); err != nil {
		return nil, err
	}
	return &SMS{AccountSID: cfg.AccountSID, AuthToken: cfg.AuthToken, From: cfg.From, To: cfg.To}, nil
}

func (s *SMS) Name() string { return "SMS" }

func (s *SMS) Send(ctx context.Context, alert Alert) error {
	body := fmt.Sprintf("Keyword alert [%s]\nKeywords: %s\n\n%s", alert.Chat, alert.KeywordLine(), alert.Text)
	return sendTwilio(ctx, s.AccountSID, s.AuthToken, s.From, s.To, truncate(body, smsMaxLen))
}

// checkTwilio validates the settings shared by the SMS and WhatsApp channels.
func checkTwilio(channel string, cfg config.TwilioConfig) error {
	switch {
	case cfg.AccountSID == "" || cfg.AuthToken == "":
		return &ConfigError{Channel: channel, Reason: "twilio credentials are required"}
	case cfg.From == "" || cfg.To == "":
		return &ConfigError{Channel: channel, Reason: "from and to numbers are required"}
	}
	return nil
}

// sendTwilio POSTs one message through the Twilio API; shared by SMS and WhatsApp.
func sendTwilio(ctx context.Context, sid, token, from, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", twilioAPIBase, sid)
	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(sid, token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return twilioStatusErr(resp)
	}
	return nil
}

// twilioStatusErr decodes the Twilio error body. Bad credentials and
// unverified trial numbers (20003, 20008, 21608) never recover on retry;
// anything else, rate limits included, stays transient.
func twilioStatusErr(resp *http.Response) error {
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body.Code == 0 {
		return statusErr(resp.StatusCode)
	}
	err := fmt.Errorf("twilio error %d: %s", body.Code, body.Message)
	switch body.Code {
	case 20003, 20008, 21608:
		return Permanent(err)
	}
	return err
}
