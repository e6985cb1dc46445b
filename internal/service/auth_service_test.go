package service

import (
	"context"
	"testing"

	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/events"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

func TestLoginUnknownPairLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "john@work.com", "123", domain.RoleSeeker)
	assertCode(t, err, apperrors.CodeAuthenticationFailed)

	if u, _ := f.store.SessionUser(ctx); u != nil {
		t.Fatalf("session pointer set after failed login: %+v", u)
	}
}

func TestLoginMatchesEmailCaseInsensitively(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	res, err := f.auth.Login(ctx, "JOHN@work.com", "anything", domain.RoleWorker)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Session.UserID != "w1" || res.Token.Value == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.User.Password != "" {
		t.Fatalf("login result leaked password hash")
	}

	session, err := f.auth.CurrentSession(ctx)
	if err != nil || session.UserID != "w1" {
		t.Fatalf("expected current session w1, got %+v (%v)", session, err)
	}
}

func TestLoginVerifiesPasswordWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.VerifyPasswords = true
	f := newFixture(t, cfg)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "john@work.com", "wrong", domain.RoleWorker)
	assertCode(t, err, apperrors.CodeAuthenticationFailed)

	if _, err := f.auth.Login(ctx, "john@work.com", "123", domain.RoleWorker); err != nil {
		t.Fatalf("login with demo password: %v", err)
	}
}

func TestSignupWorkerDefaults(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()

	res, err := f.auth.Signup(ctx, SignupInput{Name: "Pat", Email: "pat@work.com", Password: "pw", Role: domain.RoleWorker})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	u := f.user(t, res.User.ID)
	if u.Balance != 100 || u.Category != domain.Categories()[0] || u.HourlyRate != 20 {
		t.Fatalf("unexpected worker defaults %+v", u)
	}
	if !u.IsAvailable || u.Rating != 0 || u.ReviewCount != 0 || len(u.Skills) != 1 || u.Skills[0] != u.Category {
		t.Fatalf("unexpected worker profile %+v", u)
	}
	if u.Reviews == nil || len(u.Reviews) != 0 {
		t.Fatalf("expected stored empty review list, got %#v", u.Reviews)
	}
	if u.Password == "pw" || u.Password == "" {
		t.Fatalf("password not hashed")
	}

	session, _ := f.auth.CurrentSession(ctx)
	if session.UserID != u.ID {
		t.Fatalf("signup did not set session pointer")
	}
	if got := f.dispatcher.types(); len(got) != 1 || got[0] != events.EventUserSignedUp {
		t.Fatalf("expected user_signed_up event, got %v", got)
	}
}

func TestSignupValidation(t *testing.T) {
	f := newFixture(t, testConfig())
	cases := []struct {
		name  string
		input SignupInput
	}{
		{"missing name", SignupInput{Email: "a@b.c", Password: "pw", Role: domain.RoleSeeker}},
		{"missing password", SignupInput{Name: "A", Email: "a@b.c", Role: domain.RoleSeeker}},
		{"bad role", SignupInput{Name: "A", Email: "a@b.c", Password: "pw", Role: "ADMIN"}},
		{"bad category", SignupInput{Name: "A", Email: "a@b.c", Password: "pw", Role: domain.RoleWorker, Category: "Astronaut"}},
		{"negative rate", SignupInput{Name: "A", Email: "a@b.c", Password: "pw", Role: domain.RoleWorker, HourlyRate: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.auth.Signup(context.Background(), tc.input)
			assertCode(t, err, apperrors.CodeValidationFailed)
		})
	}
}

func TestSignupAllowsDuplicateEmail(t *testing.T) {
	f := newFixture(t, testConfig())
	f.signupSeeker(t, "ana")
	f.signupSeeker(t, "ana")

	users, _ := f.store.Users(context.Background())
	count := 0
	for _, u := range users {
		if u.Email == "ana@home.com" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected two accounts with the same email, got %d", count)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	f := newFixture(t, testConfig())
	ctx := context.Background()
	f.signupSeeker(t, "ana")

	if err := f.auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, err := f.auth.CurrentSession(ctx)
	assertCode(t, err, apperrors.CodeAuthenticationFailed)
}
