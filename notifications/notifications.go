// Package notifications dispatches push and email messages. Every send is
// best-effort: failures are logged and never fail the operation that
// triggered them.
package notifications

import (
	"context"
	"encoding/json"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/appleboy/go-fcm"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"

	"github.com/sosika-app/sosika-backend/config"
)

type Notifier struct {
	store *TokenStore

	fcmClient *fcm.Client
	mailer    *mail.Client
	from      string

	vapidPublic  string
	vapidPrivate string
	vapidSubject string
}

// New wires up whichever channels are configured. Missing credentials
// disable the corresponding channel rather than failing startup.
func New(store *TokenStore) (*Notifier, error) {
	n := &Notifier{
		store:        store,
		vapidPublic:  config.VAPIDPublicKey,
		vapidPrivate: config.VAPIDPrivateKey,
		vapidSubject: config.VAPIDSubject,
	}

	if config.FCMAPIKey != "" {
		client, err := fcm.NewClient(config.FCMAPIKey)
		if err != nil {
			return nil, err
		}
		n.fcmClient = client
	}

	if config.SMTPHost != "" {
		mailer, err := mail.NewClient(config.SMTPHost,
			mail.WithPort(config.SMTPPort),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(config.SMTPUser),
			mail.WithPassword(config.SMTPPass),
		)
		if err != nil {
			return nil, err
		}
		n.mailer = mailer
		n.from = config.SMTPUser
	}

	return n, nil
}

// PushToUser sends a device push to the user's registered token, if any.
func (n *Notifier) PushToUser(ctx context.Context, userID uuid.UUID, title, body string) {
	if n.fcmClient == nil {
		return
	}

	token, err := n.store.Token(ctx, userID)
	if err != nil {
		logrus.WithError(err).Errorf("failed to look up device token for user %s", userID)
		return
	}
	if token == "" {
		logrus.Debugf("no device token for user %s", userID)
		return
	}

	_, err = n.fcmClient.Send(&fcm.Message{
		To: token,
		Notification: &fcm.Notification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		logrus.WithError(err).Errorf("failed to push to user %s", userID)
	}
}

// PushToVendor sends a web push to every subscription the vendor has
// registered, pruning subscriptions the push service reports as gone.
func (n *Notifier) PushToVendor(ctx context.Context, vendorID uuid.UUID, title, body string) {
	if n.vapidPrivate == "" {
		return
	}

	subs, err := n.store.VendorSubscriptions(ctx, vendorID)
	if err != nil {
		logrus.WithError(err).Errorf("failed to look up subscriptions for vendor %s", vendorID)
		return
	}
	if len(subs) == 0 {
		logrus.Debugf("no push subscriptions for vendor %s", vendorID)
		return
	}

	payload, err := json.Marshal(map[string]string{"title": title, "body": body})
	if err != nil {
		logrus.WithError(err).Error("failed to encode push payload")
		return
	}

	var sendErrs error
	valid := make([]json.RawMessage, 0, len(subs))
	for _, raw := range subs {
		var sub webpush.Subscription
		if err := json.Unmarshal(raw, &sub); err != nil {
			sendErrs = multierror.Append(sendErrs, err)
			continue
		}

		resp, err := webpush.SendNotification(payload, &sub, &webpush.Options{
			Subscriber:      n.vapidSubject,
			VAPIDPublicKey:  n.vapidPublic,
			VAPIDPrivateKey: n.vapidPrivate,
			TTL:             30,
		})
		if err != nil {
			sendErrs = multierror.Append(sendErrs, err)
			valid = append(valid, raw)
			continue
		}
		resp.Body.Close()

		// 410 Gone means the subscription expired; drop it from the store.
		if resp.StatusCode != http.StatusGone {
			valid = append(valid, raw)
		}
	}

	if sendErrs != nil {
		logrus.WithError(sendErrs).Errorf("push to vendor %s partially failed", vendorID)
	}

	if len(valid) != len(subs) {
		if err := n.store.SetVendorSubscriptions(ctx, vendorID, valid); err != nil {
			logrus.WithError(err).Errorf("failed to prune subscriptions for vendor %s", vendorID)
		}
	}
}

// Email sends a plain-text email.
func (n *Notifier) Email(to, subject, body string) {
	if n.mailer == nil {
		return
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		logrus.WithError(err).Error("invalid email sender")
		return
	}
	if err := msg.To(to); err != nil {
		logrus.WithError(err).Errorf("invalid email recipient %q", to)
		return
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := n.mailer.DialAndSend(msg); err != nil {
		logrus.WithError(err).Errorf("failed to send email to %q", to)
	}
}
