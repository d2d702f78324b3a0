package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const etherealAccountURL = "https://api.nodemailer.com/user"

// EtherealSender is the preview-mode sandbox transport. Messages land in a
// disposable Ethereal inbox and never reach a real recipient; the result
// carries an inspection URL instead.
type EtherealSender struct {
	from string
	log  *zap.Logger
	http *http.Client

	mu      sync.Mutex
	account *etherealAccount
}

type etherealAccount struct {
	User string `json:"user"`
	Pass string `json:"pass"`
	SMTP struct {
		Host string `json:"host"`
		Port int    `json:"port"`
	} `json:"smtp"`
	Web string `json:"web"`
}

func NewEtherealSender(from string, log *zap.Logger) *EtherealSender {
	return &EtherealSender{
		from: from,
		log:  log,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *EtherealSender) Send(ctx context.Context, e Email) (*SendResult, error) {
	account, err := s.testAccount(ctx)
	if err != nil {
		return nil, fmt.Errorf("create sandbox mail account: %w", err)
	}

	msgID := newMessageID()
	m := buildMessage(s.from, msgID, e)

	d := gomail.NewDialer(account.SMTP.Host, account.SMTP.Port, account.User, account.Pass)
	if err := d.DialAndSend(m); err != nil {
		return nil, fmt.Errorf("send mail to sandbox: %w", err)
	}

	previewURL := strings.TrimSuffix(account.Web, "/") + "/messages"
	s.log.Info("preview email captured in sandbox",
		zap.String("to", e.To),
		zap.String("subject", e.Subject),
		zap.String("preview_url", previewURL),
	)

	return &SendResult{MessageID: msgID, PreviewURL: previewURL}, nil
}

// testAccount lazily provisions one disposable account per process.
func (s *EtherealSender) testAccount(ctx context.Context) (*etherealAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.account != nil {
		return s.account, nil
	}

	body, err := json.Marshal(map[string]string{"requestor": "danverse", "version": "1.0.0"})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, etherealAccountURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ethereal account request failed: %s", resp.Status)
	}

	var account etherealAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return nil, err
	}
	if account.Web == "" {
		account.Web = "https://ethereal.email"
	}

	s.account = &account
	return s.account, nil
}
