package main

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/Rshep3087/expensemon/api"
	"github.com/Rshep3087/expensemon/session"
)

const (
	methodPassword = "password"
	methodToken    = "token"
	methodRegister = "register"
)

var formValidator = validator.New(validator.WithRequiredStructEnabled())

// authValues backs the login and register forms.
type authValues struct {
	method   string
	name     string
	email    string
	password string
	token    string
}

func validateEmail(s string) error {
	if err := formValidator.Var(strings.TrimSpace(s), "required,email"); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}

func validatePassword(s string) error {
	if s == "" {
		return errors.New("password is required")
	}
	return nil
}

func newLoginForm(a *authValues) *huh.Form {
	if a.method == "" || a.method == methodRegister {
		a.method = methodPassword
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign in").
				Options(
					huh.NewOption("Email and password", methodPassword),
					huh.NewOption("Paste an API token", methodToken),
					huh.NewOption("Create an account", methodRegister),
				).
				Value(&a.method),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&a.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&a.password).
				Validate(validatePassword),
		).WithHideFunc(func() bool { return a.method != methodPassword }),
		huh.NewGroup(
			huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Value(&a.token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("token is required")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return a.method != methodToken }),
	)
}

func newRegisterForm(a *authValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&a.name),
			huh.NewInput().
				Title("Email").
				Value(&a.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&a.password).
				Validate(validatePassword),
		),
	)
}

func updateAuthForm(msg tea.Msg, m *model) (tea.Model, tea.Cmd) {
	form, cmd := m.authForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.authForm = f
	}

	if m.authForm.State != huh.StateCompleted {
		return m, cmd
	}

	if m.sessionState == loginState && m.auth.method == methodRegister {
		return m, m.navigate(session.PathRegister)
	}

	values := *m.auth
	m.auth.password = ""
	m.auth.token = ""
	m.errorMsg = ""
	register := m.sessionState == registerState
	m.sessionState = loading

	return m, tea.Batch(m.loadingSpinner.Tick, m.submitAuth(values, register))
}

// submitAuth signs in and stores the token. The session observer moves the UI on.
func (m model) submitAuth(values authValues, register bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
		defer cancel()

		email := strings.TrimSpace(values.email)
		token := strings.TrimSpace(values.token)

		if register {
			err := m.client.Register(ctx, api.Credentials{
				Name:     strings.TrimSpace(values.name),
				Email:    email,
				Password: values.password,
			})
			if err != nil {
				log.Error("registration failed", "error", err)
				return authFailedMsg{err: err}
			}
		}

		if register || values.method == methodPassword {
			var err error
			token, err = m.client.Login(ctx, email, values.password)
			if err != nil {
				log.Error("login failed", "error", err)
				return authFailedMsg{err: err}
			}
		}

		if err := m.store.Login(token); err != nil {
			return authFailedMsg{err: err}
		}

		log.Info("signed in", "email", email)
		return nil
	}
}
