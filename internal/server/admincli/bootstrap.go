// Package admincli implements the interactive bootstrap of the first admin
// account. The REST API only lets an admin create admins, so a fresh
// database needs this path once.
package admincli

import (
	"bufio"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/novelnest/internal/common"
	"github.com/dmitrijs2005/novelnest/internal/server/models"
)

var (
	ErrEmptyField       = errors.New("value must not be empty")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Bootstrapper creates an admin account without a calling identity.
type Bootstrapper interface {
	BootstrapAdmin(ctx context.Context, in models.NewUser) (*models.User, error)
}

type Prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(in), out: out}
}

func (p *Prompter) text(prompt, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}
	v, err := GetSimpleText(p.reader, prompt, p.out)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("%s: %w", prompt, ErrEmptyField)
	}
	return v, nil
}

func (p *Prompter) password() (string, error) {
	pw, err := GetPassword("Enter password", p.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	if len(pw) == 0 {
		return "", fmt.Errorf("password: %w", ErrEmptyField)
	}
	again, err := GetPassword("Repeat password", p.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(again)
	if subtle.ConstantTimeCompare(pw, again) != 1 {
		return "", ErrPasswordMismatch
	}
	return string(pw), nil
}

// CreateAdmin collects the admin's username, email and password, prompting
// for whatever was not preset, and creates the account through b.
func CreateAdmin(ctx context.Context, b Bootstrapper, p *Prompter, userName, email string) (*models.User, error) {
	userName, err := p.text("Enter admin username", userName)
	if err != nil {
		return nil, err
	}
	email, err = p.text("Enter admin email", email)
	if err != nil {
		return nil, err
	}
	password, err := p.password()
	if err != nil {
		return nil, err
	}

	u, err := b.BootstrapAdmin(ctx, models.NewUser{UserName: userName, Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(p.out, "Admin %q created with id %d\n", u.UserName, u.ID)
	return u, nil
}
