// Package service provides functions to publish domain events to RabbitMQ.
// Errors are logged and returned to allow callers to ignore failures without
// interrupting the main request flow.
package service

import (
    "context"
    "encoding/json"
    "net"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    log "github.com/sirupsen/logrus"

    q "github.com/iliyamo/lunchly/internal/queue"
)

// AMQPPublisher publishes customer events to the customer.saved queue.  A
// connection is opened per publish; write volume is a handful of events
// per minute at most.
type AMQPPublisher struct {
    url    string
    logger *log.Entry
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, logger *log.Entry) *AMQPPublisher {
    if logger == nil {
        logger = log.WithField("component", "publisher")
    }
    return &AMQPPublisher{url: url, logger: logger}
}

// PublishCustomerSaved publishes event as a persistent JSON message.  It
// never panics; any error is logged and returned so the caller can choose
// to ignore it.
func (p *AMQPPublisher) PublishCustomerSaved(ctx context.Context, event q.CustomerSavedEvent) error {
    logger := p.logger.WithField("customer_id", event.CustomerID)

    body, err := json.Marshal(event)
    if err != nil {
        logger.WithError(err).Warn("marshal event failed")
        return err
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{
        Heartbeat: 10 * time.Second,
        Locale:    "en_US",
        Dial:      dialContext(ctx),
    })
    if err != nil {
        logger.WithError(err).Warn("rabbitmq dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        logger.WithError(err).Warn("rabbitmq channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(q.CustomerSavedQueue, true, false, false, false, nil); err != nil {
        logger.WithError(err).Warn("rabbitmq queue declare failed")
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        MessageId:    event.RequestID,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", q.CustomerSavedQueue, false, false, pub); err != nil {
        logger.WithError(err).Warn("rabbitmq publish failed")
        return err
    }
    return nil
}

// defaultHandshakeTimeout applies when ctx carries no deadline.
const defaultHandshakeTimeout = 30 * time.Second

// dialContext returns an amqp dial func bound to ctx.  The TCP connect
// honours cancellation, and the AMQP handshake is bounded by the ctx
// deadline; amqp clears the deadline once the connection is open.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
    return func(network, addr string) (net.Conn, error) {
        var d net.Dialer
        conn, err := d.DialContext(ctx, network, addr)
        if err != nil {
            return nil, err
        }
        deadline, ok := ctx.Deadline()
        if !ok {
            deadline = time.Now().Add(defaultHandshakeTimeout)
        }
        if err := conn.SetDeadline(deadline); err != nil {
            _ = conn.Close()
            return nil, err
        }
        return conn, nil
    }
}
