package ingest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rs/zerolog"

	"github.com/VvkAlgo/RoleMatchAI/internal/domain/model"
	"github.com/VvkAlgo/RoleMatchAI/internal/domain/ports/adapter"
)

// IMAPSource pulls unseen job alert emails over IMAP and turns each
// one into a raw batch. Messages are fetched with BODY.PEEK[] and only
// flagged \Seen once their batch has been built, so a failed poll
// leaves them for the next run.
type IMAPSource struct {
	addr       string
	username   string
	password   string
	mailbox    string
	subjectAny []string
	maxPerPoll int
	lookback   time.Duration
	log        zerolog.Logger
}

var _ adapter.InboxSource = (*IMAPSource)(nil)

type IMAPOptions struct {
	Addr       string
	Username   string
	Password   string
	Mailbox    string
	SubjectAny []string
	MaxPerPoll int
	Lookback   time.Duration
}

func NewIMAPSource(opts IMAPOptions, logger zerolog.Logger) (*IMAPSource, error) {
	if opts.Addr == "" {
		return nil, errors.New("imap addr is required")
	}
	if opts.Username == "" || opts.Password == "" {
		return nil, errors.New("imap username/password is required")
	}
	addr := opts.Addr
	if !strings.Contains(addr, ":") {
		addr += ":993"
	}
	mailbox := opts.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	maxPerPoll := opts.MaxPerPoll
	if maxPerPoll <= 0 {
		maxPerPoll = 50
	}
	lookback := opts.Lookback
	if lookback <= 0 {
		lookback = 90 * 24 * time.Hour
	}
	return &IMAPSource{
		addr:       addr,
		username:   opts.Username,
		password:   opts.Password,
		mailbox:    mailbox,
		subjectAny: opts.SubjectAny,
		maxPerPoll: maxPerPoll,
		lookback:   lookback,
		log:        logger.With().Str("component", "imap_source").Logger(),
	}, nil
}

func (s *IMAPSource) Fetch(ctx context.Context) ([]model.RawBatch, error) {
	c, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer s.logoutAndClose(c)

	if _, err := c.Select(s.mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %q: %w", s.mailbox, err)
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Since:   time.Now().Add(-s.lookback),
	}
	searchData, err := c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Newest first, capped per poll.
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if len(uids) > s.maxPerPoll {
		uids = uids[:s.maxPerPoll]
	}

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:          true,
		Envelope:     true,
		InternalDate: true,
		BodySection:  []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	var (
		batches   []model.RawBatch
		processed []imap.UID
	)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return nil, fmt.Errorf("imap fetch collect: %w", err)
		}

		var (
			envSubject string
			envFrom    string
			fetchedAt  = time.Now()
		)
		if buf.Envelope != nil {
			envSubject = buf.Envelope.Subject
			envFrom = joinAddrs(buf.Envelope.From)
			if !buf.Envelope.Date.IsZero() {
				fetchedAt = buf.Envelope.Date
			}
		}

		var raw []byte
		if b := buf.FindBodySection(bodyAll); b != nil {
			raw = append([]byte(nil), b...)
		}
		_, plain, htmlBody, subject := parseMessage(raw, envSubject)

		if len(s.subjectAny) > 0 && !containsAnyFold(subject, s.subjectAny) {
			processed = append(processed, buf.UID)
			continue
		}

		text := BatchText(subject, envFrom, plain, htmlBody)
		if strings.TrimSpace(text) == "" {
			processed = append(processed, buf.UID)
			continue
		}

		batches = append(batches, model.RawBatch{
			Tag:       fmt.Sprintf("imap-%d", buf.UID),
			Text:      text,
			FetchedAt: fetchedAt,
		})
		processed = append(processed, buf.UID)
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("imap fetch close: %w", err)
	}

	if len(processed) > 0 {
		if err := s.markSeen(c, processed); err != nil {
			return batches, fmt.Errorf("mark seen: %w", err)
		}
	}
	s.log.Debug().Int("messages", len(processed)).Int("batches", len(batches)).Msg("inbox poll complete")
	return batches, nil
}

func (s *IMAPSource) dial(ctx context.Context) (*imapclient.Client, error) {
	host := s.addr
	if i := strings.Index(host, ":"); i >= 0 {
		host = host[:i]
	}
	c, err := imapclient.DialTLS(s.addr, &imapclient.Options{
		TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: host},
	})
	if err != nil {
		return nil, fmt.Errorf("imap dial tls: %w", err)
	}

	// Best-effort close on context cancel.
	go func() {
		<-ctx.Done()
		_ = c.Close()
	}()

	if err := c.Login(s.username, s.password).Wait(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

func (s *IMAPSource) markSeen(c *imapclient.Client, uids []imap.UID) error {
	storeFlags := &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}
	cmd := c.Store(imap.UIDSetNum(uids...), storeFlags, nil)
	return cmd.Close()
}

func (s *IMAPSource) logoutAndClose(c *imapclient.Client) {
	if err := c.Logout().Wait(); err != nil {
		s.log.Warn().Err(err).Msg("imap logout")
	}
	_ = c.Close()
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		a := &addrs[i]
		addr := strings.TrimSpace(a.Addr())
		if addr == "" {
			addr = strings.TrimSpace(a.Name)
		}
		if addr != "" {
			parts = append(parts, addr)
		}
	}
	return strings.Join(parts, ", ")
}

func containsAnyFold(s string, any []string) bool {
	ls := strings.ToLower(s)
	for _, a := range any {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if strings.Contains(ls, strings.ToLower(a)) {
			return true
		}
	}
	return false
}
