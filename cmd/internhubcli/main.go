// internhubcli is the terminal portal. Without flags it works against a
// local JSON file the way the browser client worked against localStorage;
// with -s it talks to a running internhub server instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/patric-chuzhbe/internhub/internal/catalog"
	"github.com/patric-chuzhbe/internhub/internal/cli"
	"github.com/patric-chuzhbe/internhub/internal/db/jsondb"
	"github.com/patric-chuzhbe/internhub/internal/models"
	"github.com/patric-chuzhbe/internhub/internal/remote"
	"github.com/patric-chuzhbe/internhub/internal/service"
	"github.com/patric-chuzhbe/internhub/internal/session"
)

// localPortal adapts the in-process service to the command loop contract,
// lifting the catalog calls to the context-aware shape the remote client has.
type localPortal struct {
	svc *service.Service
}

func (p localPortal) Login(ctx context.Context, email, secret string) (*models.Account, error) {
	return p.svc.Authenticate(ctx, email, secret)
}

func (p localPortal) Register(ctx context.Context, email, secret string) (*models.Account, error) {
	return p.svc.Register(ctx, email, secret)
}

func (p localPortal) CheckSession(ctx context.Context) (*models.Account, error) {
	return p.svc.RestoreSession(ctx), nil
}

func (p localPortal) Logout(ctx context.Context) error {
	return p.svc.Logout(ctx)
}

func (p localPortal) Listings(_ context.Context) ([]*models.Listing, error) {
	return p.svc.Listings(), nil
}

func (p localPortal) Apply(ctx context.Context, accountID, internshipID int64) (*models.Account, error) {
	return p.svc.Apply(ctx, accountID, internshipID)
}

func (p localPortal) CreateListing(_ context.Context, payload models.ListingPayload) (*models.Listing, error) {
	return p.svc.CreateListing(payload), nil
}

func (p localPortal) UpdateListing(_ context.Context, id int64, payload models.ListingPayload) (*models.Listing, error) {
	return p.svc.UpdateListing(id, payload)
}

func (p localPortal) DeleteListing(_ context.Context, id int64) error {
	return p.svc.DeleteListing(id)
}

func (p localPortal) Ping(ctx context.Context) error {
	return p.svc.Ping(ctx)
}

func run() error {
	serverURL := flag.String("s", "", "internhub server URL, empty for the local file backend")
	storageFile := flag.String("f", "internhub.json", "accounts file for the local backend")
	tokenFile := flag.String("t", ".internhub-token", "bearer token file for the remote backend")
	flag.Parse()

	var portal cli.Portal
	if *serverURL != "" {
		portal = remote.New(*serverURL, *tokenFile)
	} else {
		db, err := jsondb.New(*storageFile)
		if err != nil {
			return fmt.Errorf("error while opening the accounts file: %w", err)
		}
		portal = localPortal{svc: service.New(db, catalog.New(), session.New(db))}
	}

	return cli.New(portal, os.Stdin, os.Stdout).Run(context.Background())
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
