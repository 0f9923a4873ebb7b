package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    log "github.com/sirupsen/logrus"
)

// AuditConsumer reads customer.saved events and appends each one as a JSON
// line to the audit log.
type AuditConsumer struct {
    url    string
    audit  *log.Logger
    logger *log.Entry
}

// NewAuditConsumer returns a consumer that dials url and writes audit lines
// to w.
func NewAuditConsumer(url string, w io.Writer, logger *log.Entry) *AuditConsumer {
    audit := log.New()
    audit.SetOutput(w)
    audit.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
    if logger == nil {
        logger = log.WithField("component", "audit-consumer")
    }
    return &AuditConsumer{url: url, audit: audit, logger: logger}
}

// OpenAuditLog opens (creating directories as needed) the audit file in
// append mode.
func OpenAuditLog(path string) (*os.File, error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return nil, fmt.Errorf("mkdir audit dir: %w", err)
    }
    return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

// Start runs Run in its own goroutine.  The returned channel receives Run's
// result and is then closed; once it fires no more audit lines are written.
func (a *AuditConsumer) Start(ctx context.Context) <-chan error {
    done := make(chan error, 1)
    go func() {
        defer close(done)
        done <- a.Run(ctx)
    }()
    return done
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures and dropped connections are retried with exponential backoff
// capped at 30s.
func (a *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(a.url)
        if err != nil {
            a.logger.WithError(err).WithField("retry_in", backoff.String()).Warn("failed to dial broker")
            select {
            case <-ctx.Done():
                return ctx.Err()
            case <-time.After(backoff):
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = a.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        a.logger.WithError(err).Warn("consume loop ended, reconnecting")
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(2 * time.Second):
        }
    }
}

func (a *AuditConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        a.logger.WithError(err).Warn("set QoS failed")
    }
    if _, err := ch.QueueDeclare(CustomerSavedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, CustomerSavedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := a.Handle(d.Body); err != nil {
            a.logger.WithError(err).Warn("handle message failed")
            _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

// Handle decodes one message body and writes its audit line.
func (a *AuditConsumer) Handle(body []byte) error {
    var ev CustomerSavedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.CustomerID == 0 {
        return errors.New("event without customer id")
    }
    a.audit.WithFields(log.Fields{
        "customer_id": ev.CustomerID,
        "action":      ev.Action,
        "full_name":   ev.FirstName + " " + ev.LastName,
        "staff_id":    ev.StaffID,
        "request_id":  ev.RequestID,
        "saved_at":    ev.SavedAt,
    }).Info("customer saved")
    return nil
}
