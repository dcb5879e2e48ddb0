package main

import (
	"context"

	"github.com/trezcool/progim/core/user"
)

func (cli *commandLine) addUser(uname, email, fullName, pwd string, isAdmin bool) error {
	role := user.RoleUser
	if isAdmin {
		role = user.RoleAdmin
	}
	data := user.NewUser{
		Username: uname,
		Email:    email,
		FullName: fullName,
		Role:     role,
		Password: pwd,
	}
	if err := data.Validate(cli.usrSvc); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(context.Background(), data)
	if err != nil {
		return err
	}
	logger.Printf("user %q created (id=%s)", usr.Username, usr.ID)
	return nil
}
