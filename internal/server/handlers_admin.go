package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/hanapbuhay/backend/internal/errors"
	"github.com/hanapbuhay/backend/internal/logging"
	"github.com/hanapbuhay/backend/internal/middleware"
	"github.com/hanapbuhay/backend/internal/models"
	"github.com/jackc/pgx/v5"
)

// AdminUserSummary is an account as listed in the admin console
type AdminUserSummary struct {
	ID          uuid.UUID   `json:"id"`
	Email       string      `json:"email"`
	Role        models.Role `json:"role"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	LastLoginAt *time.Time  `json:"last_login_at,omitempty"`
}

// handleAdminListUsers lists all accounts, newest first
func (s *APIServer) handleAdminListUsers(c *gin.Context) {
	rows, err := s.db.Query(c.Request.Context(), `
		SELECT id, email, role, is_active, created_at, last_login_at
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		logging.LogError(err, c.GetString("request_id"), "admin", "list_users")
		respondError(c, apierrors.ErrPersistenceError)
		return
	}
	defer rows.Close()

	users := make([]AdminUserSummary, 0)
	for rows.Next() {
		var u AdminUserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt, &u.LastLoginAt); err != nil {
			logging.LogError(err, c.GetString("request_id"), "admin", "list_users")
			respondError(c, apierrors.ErrPersistenceError)
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		logging.LogError(err, c.GetString("request_id"), "admin", "list_users")
		respondError(c, apierrors.ErrPersistenceError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// handleAdminDeactivateUser soft-deactivates an account. Their profile and
// history stay in place; login and token refresh are refused.
func (s *APIServer) handleAdminDeactivateUser(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierrors.NewInvalidRequestError("Invalid account id"))
		return
	}

	// Administrator accounts, the caller's own included, stay active
	tag, err := s.db.Exec(c.Request.Context(), `
		UPDATE accounts SET is_active = false WHERE id = $1 AND role <> $2
	`, accountID, models.RoleAdmin)
	if err != nil {
		logging.LogError(err, c.GetString("request_id"), "admin", "deactivate_user")
		respondError(c, apierrors.ErrPersistenceError)
		return
	}
	if tag.RowsAffected() == 0 {
		var role models.Role
		err := s.db.QueryRow(c.Request.Context(),
			`SELECT role FROM accounts WHERE id = $1`, accountID).Scan(&role)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				respondError(c, apierrors.NewNotFoundError("Account"))
				return
			}
			logging.LogError(err, c.GetString("request_id"), "admin", "deactivate_user")
			respondError(c, apierrors.ErrPersistenceError)
			return
		}
		respondError(c, apierrors.NewInvalidRequestError("Administrator accounts cannot be deactivated"))
		return
	}

	logging.LogSecurityEvent("account_deactivated",
		middleware.GetAccountIDFromContext(c).String(), c.ClientIP(), accountID.String())
	c.JSON(http.StatusOK, gin.H{})
}
