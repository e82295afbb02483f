// Package cli implements the interactive terminal portal. It drives the
// same operations the HTTP boundary exposes, against either the local
// JSON-file backend or a remote internhub server.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

// readSecret is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readSecret = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// Portal is implemented by both the local service and the remote client.
type Portal interface {
	Login(ctx context.Context, email, secret string) (*models.Account, error)
	Register(ctx context.Context, email, secret string) (*models.Account, error)
	CheckSession(ctx context.Context) (*models.Account, error)
	Logout(ctx context.Context) error
	Listings(ctx context.Context) ([]*models.Listing, error)
	Apply(ctx context.Context, accountID, internshipID int64) (*models.Account, error)
	CreateListing(ctx context.Context, payload models.ListingPayload) (*models.Listing, error)
	UpdateListing(ctx context.Context, id int64, payload models.ListingPayload) (*models.Listing, error)
	DeleteListing(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// CLI is the interactive command loop.
type CLI struct {
	portal  Portal
	in      *bufio.Reader
	out     io.Writer
	current *models.Account
}

// New wires the loop to a portal and an input/output pair.
func New(portal Portal, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		portal: portal,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) readLine(prompt string) (string, error) {
	c.printf("%s", prompt)

	line, err := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", err
	}

	return line, nil
}

func (c *CLI) readPassword(prompt string) (string, error) {
	c.printf("%s", prompt)

	secret, err := readSecret()
	c.printf("\n")
	if err != nil {
		return "", fmt.Errorf("error while reading the password: %w", err)
	}

	return string(secret), nil
}

// Run restores the stored session and enters the command loop. It returns
// when the user quits or the input is exhausted.
func (c *CLI) Run(ctx context.Context) error {
	account, err := c.portal.CheckSession(ctx)
	if err != nil {
		c.printf("Could not restore the session: %v\n", err)
	}
	c.current = account
	if c.current != nil {
		c.printf("Signed in as %s\n", c.current.Email)
	}

	c.printHelp()

	for {
		line, err := c.readLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}

		if quit := c.dispatch(ctx, line); quit {
			return nil
		}
	}
}

func (c *CLI) printHelp() {
	c.printf(`Commands:
  login      sign in with email and password
  register   create a new account
  logout     sign out
  whoami     show the current account
  list       show the internship catalog
  apply      apply to an internship by id
  add        create an internship (administrators)
  edit       update an internship (administrators)
  delete     remove an internship (administrators)
  ping       check the backend
  help       show this message
  quit       exit
`)
}

func (c *CLI) dispatch(ctx context.Context, command string) (quit bool) {
	switch command {
	case "login":
		c.login(ctx)
	case "register":
		c.register(ctx)
	case "logout":
		c.logout(ctx)
	case "whoami":
		c.whoami()
	case "list":
		c.list(ctx)
	case "apply":
		c.apply(ctx)
	case "add":
		c.addListing(ctx)
	case "edit":
		c.editListing(ctx)
	case "delete":
		c.deleteListing(ctx)
	case "ping":
		c.ping(ctx)
	case "help":
		c.printHelp()
	case "quit", "exit":
		return true
	default:
		c.printf("Unknown command %q, type help for the list\n", command)
	}

	return false
}

func (c *CLI) login(ctx context.Context) {
	email, err := c.readLine("Email: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	secret, err := c.readPassword("Password: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	account, err := c.portal.Login(ctx, email, secret)
	if err != nil {
		c.printf("Login failed: %v\n", err)
		return
	}

	c.current = account
	c.printf("Signed in as %s\n", account.Email)
}

func (c *CLI) register(ctx context.Context) {
	email, err := c.readLine("Email: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	secret, err := c.readPassword("Password: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	confirmation, err := c.readPassword("Confirm password: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}
	if secret != confirmation {
		c.printf("Registration failed: %v\n", models.ErrPasswordMismatch)
		return
	}

	account, err := c.portal.Register(ctx, email, secret)
	if err != nil {
		c.printf("Registration failed: %v\n", err)
		return
	}

	c.current = account
	c.printf("Account created, signed in as %s\n", account.Email)
}

func (c *CLI) logout(ctx context.Context) {
	if c.current == nil {
		c.printf("Not signed in\n")
		return
	}

	if err := c.portal.Logout(ctx); err != nil {
		c.printf("Logout failed: %v\n", err)
		return
	}

	c.current = nil
	c.printf("Signed out\n")
}

func (c *CLI) whoami() {
	if c.current == nil {
		c.printf("Not signed in\n")
		return
	}

	c.printf("%s (%s), applied to %d internship(s)\n",
		c.current.Email,
		c.current.Role,
		len(c.current.AppliedInternships),
	)
}

func (c *CLI) list(ctx context.Context) {
	listings, err := c.portal.Listings(ctx)
	if err != nil {
		c.printf("Could not load the catalog: %v\n", err)
		return
	}

	for _, listing := range listings {
		marker := " "
		if c.current != nil && c.current.HasApplied(listing.ID) {
			marker = "*"
		}
		c.printf("%s %d\t%s (%s, %s, %s)\n",
			marker,
			listing.ID,
			listing.Title,
			listing.Domain,
			listing.Duration,
			listing.Stipend,
		)
		if len(listing.Skills) > 0 {
			c.printf("\t  skills: %s\n", listing.Skills.Joined())
		}
	}
}

func (c *CLI) readID(prompt string) (int64, error) {
	line, err := c.readLine(prompt)
	if err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid id", line)
	}

	return id, nil
}

func (c *CLI) apply(ctx context.Context) {
	if c.current == nil {
		c.printf("Sign in to apply\n")
		return
	}

	id, err := c.readID("Internship id: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	account, err := c.portal.Apply(ctx, c.current.ID, id)
	if err != nil {
		c.printf("Application failed: %v\n", err)
		return
	}

	c.current = account
	c.printf("Applied, %d application(s) total\n", len(account.AppliedInternships))
}

func (c *CLI) readListingPayload() (models.ListingPayload, error) {
	var payload models.ListingPayload

	fields := []struct {
		prompt string
		target *string
	}{
		{"Title: ", &payload.Title},
		{"Domain: ", &payload.Domain},
		{"Description: ", &payload.Description},
		{"Duration: ", &payload.Duration},
		{"Stipend: ", &payload.Stipend},
	}
	for _, field := range fields {
		value, err := c.readLine(field.prompt)
		if err != nil {
			return payload, err
		}
		*field.target = value
	}

	skills, err := c.readLine("Skills (comma separated): ")
	if err != nil {
		return payload, err
	}
	payload.Skills = models.ParseSkills(skills)

	return payload, nil
}

func (c *CLI) addListing(ctx context.Context) {
	payload, err := c.readListingPayload()
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	listing, err := c.portal.CreateListing(ctx, payload)
	if err != nil {
		c.printf("Could not create the internship: %v\n", err)
		return
	}

	c.printf("Created internship %d\n", listing.ID)
}

func (c *CLI) editListing(ctx context.Context) {
	id, err := c.readID("Internship id: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	payload, err := c.readListingPayload()
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	if _, err := c.portal.UpdateListing(ctx, id, payload); err != nil {
		c.printf("Could not update the internship: %v\n", err)
		return
	}

	c.printf("Updated internship %d\n", id)
}

func (c *CLI) deleteListing(ctx context.Context) {
	id, err := c.readID("Internship id: ")
	if err != nil {
		c.printf("%v\n", err)
		return
	}

	if err := c.portal.DeleteListing(ctx, id); err != nil {
		c.printf("Could not delete the internship: %v\n", err)
		return
	}

	c.printf("Deleted internship %d\n", id)
}

func (c *CLI) ping(ctx context.Context) {
	if err := c.portal.Ping(ctx); err != nil {
		c.printf("Backend is unreachable: %v\n", err)
		return
	}

	c.printf("Backend is up\n")
}
