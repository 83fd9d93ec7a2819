package store

import (
	"context"
	"fmt"
	"net/url"

	"gorm.io/gorm"

	"arma3-server-manager/arma"
	"arma3-server-manager/optimistic"
)

// NotificationAPI is the slice of the backend client used by Notifications.
type NotificationAPI interface {
	ListNotifications(ctx context.Context) ([]arma.Notification, error)
	CreateNotification(ctx context.Context, req arma.NotificationRequest) (int64, error)
	UpdateNotification(ctx context.Context, id int64, update arma.NotificationUpdate) error
	DeleteNotification(ctx context.Context, id int64) error
}

type Notifications struct {
	*optimistic.Collection[arma.Notification]
	api NotificationAPI
}

func NewNotifications(api NotificationAPI, conn *gorm.DB) *Notifications {
	onSuccess, onError := journal(conn, "notifications")
	n := &Notifications{api: api}
	n.Collection = optimistic.New[arma.Notification](optimistic.RemoteFuncs[arma.Notification]{
		CreateFunc: func(ctx context.Context, nt arma.Notification) (arma.Notification, error) {
			id, err := api.CreateNotification(ctx, arma.NotificationRequest{
				URL:           nt.URL,
				Enabled:       nt.Enabled,
				SendServer:    nt.SendServer,
				SendModUpdate: nt.SendModUpdate,
			})
			if err != nil {
				return arma.Notification{}, err
			}
			nt.ID = id
			return nt, nil
		},
		UpdateFunc: func(ctx context.Context, nt arma.Notification) error {
			return api.UpdateNotification(ctx, nt.ID, arma.NotificationUpdate{
				URL:           &nt.URL,
				Enabled:       &nt.Enabled,
				SendServer:    &nt.SendServer,
				SendModUpdate: &nt.SendModUpdate,
			})
		},
		DeleteFunc: func(ctx context.Context, nt arma.Notification) error {
			return api.DeleteNotification(ctx, nt.ID)
		},
	}, optimistic.Options[arma.Notification]{
		Name: "notification",
		Key:  func(nt arma.Notification) string { return idKey(nt.ID) },
		Adopt: func(draft, server arma.Notification) arma.Notification {
			draft.ID = server.ID
			return draft
		},
		OnSuccess: onSuccess,
		OnError:   onError,
	})
	return n
}

func (n *Notifications) Refresh(ctx context.Context) error {
	list, err := n.api.ListNotifications(ctx)
	if err != nil {
		return err
	}
	n.Load(list)
	return nil
}

func (n *Notifications) ByID(id int64) (optimistic.Item[arma.Notification], bool) {
	return n.Find(func(nt arma.Notification) bool { return nt.ID == id })
}

// Add creates an enabled webhook after checking that rawURL is absolute http(s).
func (n *Notifications) Add(rawURL string, sendServer, sendModUpdate bool) (*optimistic.Result, error) {
	if err := ValidateWebhookURL(rawURL); err != nil {
		return nil, err
	}
	return n.Insert(arma.Notification{
		URL:           rawURL,
		Enabled:       true,
		SendServer:    sendServer,
		SendModUpdate: sendModUpdate,
	}), nil
}

func (n *Notifications) Toggle(id string) *optimistic.Result {
	return n.Update(id, func(nt arma.Notification) arma.Notification {
		nt.Enabled = !nt.Enabled
		return nt
	})
}

func ValidateWebhookURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid webhook URL %q", rawURL)
	}
	return nil
}
