package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/progim/core/user"
	"github.com/trezcool/progim/storage/database/inmem"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	t.Helper()
	logger = log.New(io.Discard, "", 0)
	usrRepo = inmem.NewUserRepository(inmem.Open())
	return &commandLine{
		usrSvc: user.NewService(usrRepo),
	}
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkCliErr(t *testing.T, tt cliTest, err error) {
	t.Helper()
	if err != nil {
		if tt.wantErr != nil {
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		} else if tt.wantErrStr != "" {
			if err.Error() != tt.wantErrStr {
				t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
			}
		} else {
			t.Errorf("cli.run() unexpected error = %v", err)
		}
	} else if tt.wantErr != nil || tt.wantErrStr != "" {
		t.Errorf("cli.run() error = nil, want %v%s", tt.wantErr, tt.wantErrStr)
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)
	mockPassword(t, "s3cret")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkCliErr(t, tt, cli.run(args))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "missing username", args: []string{"adduser"}, wantErr: errHelp},
		{name: "empty password", args: []string{"adduser", "-username", "awe"}, wantErr: errHelp, extra: ""},
		{name: "created", args: []string{"adduser", "-username", "awe", "-email", "awe@test.gt"}},
		{name: "admin created", args: []string{"adduser", "-username", "boss", "-admin"}},
		{name: "duplicate username", args: []string{"adduser", "-username", "awe"}, wantErrStr: "a user with this username already exists"},
	}
	for _, tt := range tests {
		pwd := "s3cret"
		if extra, ok := tt.extra.(string); ok {
			pwd = extra
		}
		mockPassword(t, pwd)

		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkCliErr(t, tt, cli.run(args))
		})
	}

	usr, err := usrRepo.GetUserByUsername(context.Background(), "awe")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	if usr.Role != user.RoleUser || usr.Email != "awe@test.gt" {
		t.Errorf("unexpected created user: %+v", usr)
	}
	if err = usr.CheckPassword("s3cret"); err != nil {
		t.Errorf("CheckPassword(): %v", err)
	}

	boss, err := usrRepo.GetUserByUsername(context.Background(), "boss")
	if err != nil {
		t.Fatalf("GetUserByUsername(): %v", err)
	}
	if boss.Role != user.RoleAdmin {
		t.Errorf("Role = %q, want %q", boss.Role, user.RoleAdmin)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var gotCommand string
	runMigrationsFunc = func(db *sqlx.DB, command string, args ...string) error {
		gotCommand = command
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version":
			return nil
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			return nil
		default:
			return fmt.Errorf("%q: no such command", command)
		}
	}

	tests := []cliTest{
		{name: "defaults to up", args: []string{"migrate"}, extra: "up"},
		{name: "up", args: []string{"migrate", "up"}, extra: "up"},
		{name: "status", args: []string{"migrate", "status"}, extra: "status"},
		{name: "down", args: []string{"migrate", "down"}, extra: "down"},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}, extra: "up-to"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		t.Run(tt.name, func(t *testing.T) {
			checkCliErr(t, tt, cli.run(args))

			if want, ok := tt.extra.(string); ok && gotCommand != want {
				t.Errorf("migrate ran %q, want %q", gotCommand, want)
			}
		})
	}
}
