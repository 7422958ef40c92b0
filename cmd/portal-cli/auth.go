package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/portalhq/portal-cli/api"
	"github.com/portalhq/portal-cli/auth"
)

func login(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	if err := env.auth.Login(c.Context, c.String("email"), c.String("password")); err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return cli.Exit("Invalid email or password", ExitGeneralError)
		}
		return cli.Exit(fmt.Sprintf("Login failed: %v", err), ExitDataError)
	}

	sess := env.auth.Session()
	return outputJSON(map[string]interface{}{
		"success": true,
		"user":    sess.User,
	})
}

func logout(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	if err := env.auth.Logout(); err != nil {
		return cli.Exit(fmt.Sprintf("Logout failed: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success": true,
	})
}

func register(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	err = env.auth.Register(c.Context, c.String("name"), c.String("email"), c.String("password"))
	if err != nil {
		if errors.Is(err, api.ErrRegistrationRejected) {
			return cli.Exit(fmt.Sprintf("Registration rejected: %v", err), ExitGeneralError)
		}
		return cli.Exit(fmt.Sprintf("Registration failed: %v", err), ExitDataError)
	}

	return outputJSON(map[string]interface{}{
		"success": true,
		"email":   c.String("email"),
		"message": "Account created, run: portal-cli login",
	})
}

func whoami(c *cli.Context) error {
	env, err := getEnv(c)
	if err != nil {
		return cli.Exit(err.Error(), ExitDataError)
	}

	sess := env.auth.Restore(c.Context, env.cfg.Auth.StaleTTL())

	out := map[string]interface{}{
		"status": string(sess.Status),
	}
	if sess.User != nil {
		out["user"] = sess.User
	}
	if sess.Status == auth.StatusInvalid {
		out["message"] = "Stored credentials could no longer be confirmed and were discarded"
	}
	return outputJSON(out)
}
