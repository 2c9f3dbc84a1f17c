package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/mindcare_backend/internal/schema"
	"github.com/Alijeyrad/mindcare_backend/internal/service/account"
	"github.com/Alijeyrad/mindcare_backend/internal/service/notification"
	"github.com/Alijeyrad/mindcare_backend/pkg/email"
	"github.com/Alijeyrad/mindcare_backend/pkg/events"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/reqctx"
	"github.com/Alijeyrad/mindcare_backend/pkg/sms"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Provide(ProvideWorkers),
	fx.Invoke(RegisterWorkers),
)

// workerQueue load-balances each event across running instances so every
// notification is written once.
const (
	workerQueue      = "mindcare-workers"
	workerTimeout    = 30 * time.Second
	previewRuneLimit = 80
)

// Mailer is satisfied by *email.Client.
type Mailer interface {
	IsEnabled() bool
	Send(ctx context.Context, m email.Message) error
}

// TextMessenger is satisfied by *sms.Client.
type TextMessenger interface {
	IsEnabled() bool
	SendCrisisStatus(ctx context.Context, phone, patientName, status string) error
}

// Workers turns domain events into inbox notifications, emails and SMS.
type Workers struct {
	store    kv.Store
	accounts account.Service
	notifs   notification.Service
	mailer   Mailer
	texts    TextMessenger
}

func NewWorkers(store kv.Store, accounts account.Service, notifs notification.Service, mailer Mailer, texts TextMessenger) *Workers {
	return &Workers{store: store, accounts: accounts, notifs: notifs, mailer: mailer, texts: texts}
}

func ProvideWorkers(store kv.Store, accounts account.Service, notifs notification.Service, mailer *email.Client, texts *sms.Client) *Workers {
	return NewWorkers(store, accounts, notifs, mailer, texts)
}

type WorkerParams struct {
	fx.In

	Lc      fx.Lifecycle
	NC      *nats.Conn
	Workers *Workers
}

func RegisterWorkers(p WorkerParams) {
	if p.NC == nil {
		return
	}
	var subs []*nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var err error
			subs, err = p.Workers.Subscribe(p.NC)
			return err
		},
		OnStop: func(ctx context.Context) error {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			// Drain handled by ProvideNatsClient
			return nil
		},
	})
}

// Subscribe attaches the three workers to their wildcard subjects.
func (w *Workers) Subscribe(nc *nats.Conn) ([]*nats.Subscription, error) {
	routes := []struct {
		name    string
		subject string
		handle  func(ctx context.Context, subject string, data []byte) error
	}{
		{"crisis_alert_worker", events.AllCrisisRaised, w.HandleCrisisRaised},
		{"crisis_status_worker", events.AllCrisisStatus, w.HandleCrisisStatus},
		{"message_worker", events.AllMessageNew, w.HandleMessageNew},
	}

	subs := make([]*nats.Subscription, 0, len(routes))
	for _, r := range routes {
		sub, err := nc.QueueSubscribe(r.subject, workerQueue, dispatch(r.name, r.handle))
		if err != nil {
			for _, s := range subs {
				_ = s.Unsubscribe()
			}
			return nil, fmt.Errorf("%s: subscribe %s: %w", r.name, r.subject, err)
		}
		subs = append(subs, sub)
		slog.Info(r.name+": started", "subject", r.subject)
	}
	return subs, nil
}

func dispatch(name string, handle func(ctx context.Context, subject string, data []byte) error) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx, cancel := context.WithTimeout(reqctx.WithTrace(context.Background(), reqctx.NewTrace()), workerTimeout)
		defer cancel()
		if err := handle(ctx, msg.Subject, msg.Data); err != nil {
			slog.WarnContext(ctx, name+": handle failed", "subject", msg.Subject, "error", err)
		}
	}
}

// ---------------------------------------------------------------------------
// crisis_alert_worker
// ---------------------------------------------------------------------------

// HandleCrisisRaised notifies the owning psychologist in the inbox and by email.
// The payload is the crisis id.
func (w *Workers) HandleCrisisRaised(ctx context.Context, subject string, data []byte) error {
	cr, err := w.loadCrisis(ctx, strings.TrimSpace(string(data)))
	if err != nil || cr == nil {
		return err
	}
	if target := events.Target(subject); target != cr.PsychologistID.String() {
		slog.Warn("crisis_alert_worker: subject does not match crisis owner", "subject", subject, "crisis_id", cr.ID)
	}

	body := cr.PatientName + " raised a crisis alert"
	if _, err := w.notifs.Create(ctx, notification.CreateRequest{
		UserID: cr.PsychologistID,
		Type:   notification.TypeCrisisRaised,
		Title:  "Crisis alert",
		Body:   &body,
		Data:   map[string]any{"crisisId": cr.ID, "patientId": cr.PatientID.String()},
	}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if w.mailer == nil || !w.mailer.IsEnabled() {
		return nil
	}
	psy, err := w.accounts.Psychologist(ctx, cr.PsychologistID)
	if err != nil {
		return fmt.Errorf("load psychologist: %w", err)
	}
	msg := email.BuildCrisisAlertEmail(email.CrisisAlertData{
		PsychologistName:  psy.Name,
		PsychologistEmail: psy.Email,
		PatientName:       cr.PatientName,
		CrisisID:          cr.ID,
		RaisedAt:          cr.Timestamp,
	})
	if err := w.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send crisis alert email: %w", err)
	}
	slog.Debug("crisis_alert_worker: email sent", "crisis_id", cr.ID)
	return nil
}

// ---------------------------------------------------------------------------
// crisis_status_worker
// ---------------------------------------------------------------------------

// HandleCrisisStatus tells the patient their crisis moved, in the inbox and by
// SMS. The crisis id is the subject's last token; the payload is the status.
func (w *Workers) HandleCrisisStatus(ctx context.Context, subject string, data []byte) error {
	cr, err := w.loadCrisis(ctx, events.Target(subject))
	if err != nil || cr == nil {
		return err
	}
	status := strings.TrimSpace(string(data))
	if status == "" {
		status = string(cr.Status)
	}

	body := "Your crisis alert is now " + status
	if _, err := w.notifs.Create(ctx, notification.CreateRequest{
		UserID: cr.PatientID,
		Type:   notification.TypeCrisisStatus,
		Title:  "Crisis status updated",
		Body:   &body,
		Data:   map[string]any{"crisisId": cr.ID, "status": status},
	}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if w.texts == nil || !w.texts.IsEnabled() {
		return nil
	}
	p, err := w.accounts.Patient(ctx, cr.PatientID)
	if err != nil {
		return fmt.Errorf("load patient: %w", err)
	}
	if p.Phone == "" {
		return nil
	}
	if err := w.texts.SendCrisisStatus(ctx, p.Phone, p.Name, status); err != nil {
		return fmt.Errorf("send crisis status sms: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// message_worker
// ---------------------------------------------------------------------------

// HandleMessageNew drops a notification in the recipient's inbox. The payload
// is the message id.
func (w *Workers) HandleMessageNew(ctx context.Context, subject string, data []byte) error {
	id := strings.TrimSpace(string(data))
	msg, err := kv.GetJSON[schema.Message](ctx, w.store, schema.MessageKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			slog.Warn("message_worker: message not found", "id", id)
			return nil
		}
		return fmt.Errorf("load message: %w", err)
	}

	preview := preview(msg.Text)
	if _, err := w.notifs.Create(ctx, notification.CreateRequest{
		UserID: msg.RecipientID,
		Type:   notification.TypeMessageNew,
		Title:  "New message from " + msg.SenderName,
		Body:   &preview,
		Data:   map[string]any{"messageId": msg.ID, "senderId": msg.SenderID.String()},
	}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// loadCrisis returns nil, nil for an unknown id; the event is dropped.
func (w *Workers) loadCrisis(ctx context.Context, id string) (*schema.Crisis, error) {
	cr, err := kv.GetJSON[schema.Crisis](ctx, w.store, schema.CrisisKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			slog.Warn("workers: crisis not found", "id", id)
			return nil, nil
		}
		return nil, fmt.Errorf("load crisis: %w", err)
	}
	return cr, nil
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRuneLimit {
		return text
	}
	return string(r[:previewRuneLimit]) + "…"
}
