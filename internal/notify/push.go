package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/courseboard/api/internal/models"
)

// Ticket is what a browser needs to open a socket to the push relay.
type Ticket struct {
	Host       string `json:"host"`
	SocketPort string `json:"socket_port"`
	HTTPHost   string `json:"http_host"`
	Ticket     string `json:"ticket"`
}

// PushClient talks to the push relay over HTTP. The relay fans emitted
// events out to the user's connected sockets; its wire protocol toward
// browsers is not our concern.
type PushClient struct {
	host       string
	httpPort   string
	socketPort string
	authKey    string
	client     *http.Client
}

func NewPushClient(host, httpPort, socketPort, authKey string) *PushClient {
	return &PushClient{
		host:       host,
		httpPort:   httpPort,
		socketPort: socketPort,
		authKey:    authKey,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *PushClient) baseURL() string {
	return fmt.Sprintf("http://%s:%s", p.host, p.httpPort)
}

type relayResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (p *PushClient) post(payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode relay payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.baseURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("auth-key", p.authKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push relay unreachable: %w", err)
	}
	defer resp.Body.Close()

	var decoded relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode relay response: %w", err)
	}
	if !decoded.Success {
		return nil, fmt.Errorf("push relay error: %s", decoded.Error)
	}
	return decoded.Data, nil
}

// Emit sends one sync payload for one recipient.
func (p *PushClient) Emit(user models.User, kind string, id int64, context any) error {
	if user.IsGuest() {
		return nil
	}
	_, err := p.post(map[string]any{
		"mode":   "emit",
		"userid": user.ID,
		"event":  "sync",
		"data": map[string]any{
			"type":    kind,
			"id":      id,
			"context": context,
		},
	})
	return err
}

// GetTicket obtains a one-time socket login ticket for the user.
func (p *PushClient) GetTicket(user models.User) (*Ticket, error) {
	if user.IsGuest() {
		return nil, fmt.Errorf("cannot issue push tickets for guests")
	}

	data, err := p.post(map[string]any{
		"mode":     "get_ticket",
		"userid":   user.ID,
		"username": user.FullName(),
	})
	if err != nil {
		return nil, err
	}

	var ticket string
	if err := json.Unmarshal(data, &ticket); err != nil {
		return nil, fmt.Errorf("failed to decode ticket: %w", err)
	}

	return &Ticket{
		Host:       p.host,
		SocketPort: p.socketPort,
		HTTPHost:   p.baseURL(),
		Ticket:     ticket,
	}, nil
}
