package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/smartenroll/backend/pkg/auth"
	"github.com/smartenroll/backend/pkg/importer"
	"github.com/smartenroll/backend/pkg/importer/parser/roster"
	"github.com/smartenroll/backend/pkg/models"
	"github.com/smartenroll/backend/pkg/registrar"
	"golang.org/x/term"
	"gorm.io/gorm"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db   *gorm.DB
	auth *auth.Authenticator
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate - migrate the database schema")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-role staff|admin] - create a user")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset a user's password")
	fmt.Fprintln(cli.out, "  import -file ROSTER.csv - enroll the students of a roster file")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserName := addUserCmd.String("username", "", "The username. The password will be prompted next.")
	addUserRole := addUserCmd.String("role", string(models.RoleStaff), "The role, staff or admin.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordCmd.SetOutput(cli.out)
	resetPasswordName := resetPasswordCmd.String("username", "", "The user's username. The password will be prompted next.")

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importCmd.SetOutput(cli.out)
	importFile := importCmd.String("file", "", "The roster CSV file.")

	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if err := models.Migrate(cli.db); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "database schema is up to date")
		return nil

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		user, err := cli.auth.CreateUser(ctx, auth.UserInput{Username: *addUserName, Password: pwd, Role: models.Role(*addUserRole)})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s user %s\n", user.Role, user.Username)
		return nil

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordName == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.readPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		user, err := cli.auth.GetByUsername(ctx, *resetPasswordName)
		if err != nil {
			return err
		}
		if err := cli.auth.UpdatePassword(ctx, user.ID, pwd); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "password of %s was reset\n", user.Username)
		return nil

	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importRoster(ctx, *importFile)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) readPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) importRoster(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := roster.Parse(f)
	if err != nil {
		return err
	}

	summary, err := importer.Create(ctx, registrar.New(cli.db).Enrollment, rows, nil)
	for _, failure := range summary.Failed {
		fmt.Fprintf(cli.out, "line %d (%s): %v\n", failure.Line, failure.LRN, failure.Err)
	}
	fmt.Fprintf(cli.out, "enrolled %d of %d students\n", len(summary.Enrolled), len(rows))

	return err
}
