// Command admin is the operator CLI for the user store.
//
//	admin migrate up|down|status|version
//	admin create-user -email a@b.com -password secret -firstname John -lastname Doe
//	admin list-users
//	admin delete-user -id 7
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gin-gorm-users/internal/core/cache"
	"gin-gorm-users/internal/core/config"
	"gin-gorm-users/internal/core/database"
	"gin-gorm-users/internal/core/logger"
	"gin-gorm-users/internal/domain"
	"gin-gorm-users/internal/repo"
	"gin-gorm-users/internal/service"
)

var errUsage = errors.New("usage: admin migrate up|down|status|version | create-user | list-users | delete-user")

type app struct {
	db     *gorm.DB
	driver string
	svc    *service.UserService
	log    *zap.Logger
	out    io.Writer
}

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Logger:             log,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}

	c := cache.Dial(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
	if c != nil {
		defer c.Close()
	}
	a := newApp(cfg, db, c, log, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cleanup()
		os.Exit(2)
	}
}

// newApp builds the CLI on the same user store as the API, so writes made here
// evict the API's cached reads.
func newApp(cfg *config.Config, db *gorm.DB, c *cache.Cache, l *zap.Logger, out io.Writer) *app {
	users := repo.NewUserStore(db, c, time.Duration(cfg.Redis.TTLSec)*time.Second, l)
	return &app{
		db:     db,
		driver: cfg.DB.Driver,
		svc:    service.NewUserService(users, service.BcryptHasher{Cost: cfg.Security.BcryptCost}, l),
		log:    l,
		out:    out,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		if len(rest) != 1 {
			return errUsage
		}
		return database.Goose(a.db, a.driver, rest[0], a.log)
	case "create-user":
		return a.createUser(ctx, rest)
	case "list-users":
		return a.listUsers(ctx)
	case "delete-user":
		return a.deleteUser(ctx, rest)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func (a *app) createUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "plain password, stored as a bcrypt hash")
	firstname := fs.String("firstname", "", "first name")
	lastname := fs.String("lastname", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.svc.CreateUser(ctx, *email, *password, *firstname, *lastname)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "created user %d %s\n", u.ID, u.UUID)
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	users, err := a.svc.FindAllUsers(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tFIRSTNAME\tLASTNAME\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Firstname, u.Lastname, u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func (a *app) deleteUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ContinueOnError)
	fs.SetOutput(a.out)
	id := fs.Uint("id", 0, "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u, err := a.svc.FindUserByID(ctx, *id)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("user %d: %w", *id, domain.ErrUserNotFound)
	}
	if err := a.svc.DeleteUser(ctx, u); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted user %d\n", u.ID)
	return nil
}
