package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/repository"
	"github.com/noah-isme/lifeflow-api/pkg/config"
	"github.com/noah-isme/lifeflow-api/pkg/database"
	"github.com/noah-isme/lifeflow-api/pkg/logger"
)

type roleUpdater interface {
	UpdateRole(ctx context.Context, email string, role models.UserRole) (*models.User, error)
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

var errUnknownUser = errors.New("no user with that email")

func main() {
	var (
		email   string
		revoke  bool
		timeout time.Duration
	)
	flag.StringVar(&email, "email", "", "Email of the account to change")
	flag.BoolVar(&revoke, "revoke", false, "Demote the account to DONOR instead of granting ADMIN")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Database timeout")
	flag.Parse()

	if strings.TrimSpace(email) == "" {
		fmt.Fprintln(os.Stderr, "usage: admin-promote -email user@example.com [-revoke]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	user, err := changeRole(ctx, repository.NewUserRepository(db), repository.NewAuditRepository(db), email, revoke)
	if err != nil {
		logr.Fatal("role change failed", zap.String("email", email), zap.Error(err))
	}
	logr.Info("role changed", zap.String("user_id", user.ID), zap.String("email", user.Email), zap.String("role", string(user.Role)))
}

// changeRole sets the role and records the change in the audit log.
func changeRole(ctx context.Context, users roleUpdater, audit auditWriter, email string, revoke bool) (*models.User, error) {
	role := models.RoleAdmin
	if revoke {
		role = models.RoleDonor
	}

	user, err := users.UpdateRole(ctx, strings.TrimSpace(email), role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errUnknownUser
		}
		return nil, err
	}

	values, _ := json.Marshal(map[string]string{"role": string(role)})
	entry := &models.AuditLog{
		UserID:     &user.ID,
		Action:     models.AuditActionRoleChange,
		Resource:   "users",
		ResourceID: &user.ID,
		NewValues:  values,
		IPAddress:  "cli",
		UserAgent:  "admin-promote",
		CreatedAt:  time.Now().UTC(),
	}
	if err := audit.Create(ctx, entry); err != nil {
		return user, fmt.Errorf("record audit: %w", err)
	}
	return user, nil
}
