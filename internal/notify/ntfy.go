package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// Ntfy publishes the alert to an ntfy topic; the title travels in a header.
type Ntfy struct {
	Server, Topic string
}

func NewNtfy(server, topic string) (*Ntfy, error) {
	if topic == "" {
		return nil, &ConfigError{Channel: "ntfy", Reason: "topic is required"}
	}
	if server == "" {
		server = "https://ntfy.sh"
	}
	return &Ntfy{Server: strings.TrimRight(server, "/"), Topic: topic}, nil
}

func (n *Ntfy) Name() string { return "Ntfy" }

func (n *Ntfy) Send(ctx context.Context, alert Alert) error {
	endpoint := fmt.Sprintf("%s/%s", n.Server, n.Topic)
	body := fmt.Sprintf("Keywords: %s\n\n%s", alert.KeywordLine(), alert.Text)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Title", fmt.Sprintf("Keyword alert [%s]", alert.Chat))

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusErr(resp.StatusCode)
	}
	return nil
}
