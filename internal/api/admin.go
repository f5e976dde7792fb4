package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"agentledger/internal/db"
	"agentledger/internal/domain"
	"agentledger/internal/ledger"
	"agentledger/internal/store"
	"agentledger/internal/utils"
)

// ListUsersHandler returns all users with their balances.
func ListUsersHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if rdb != nil {
			var cached []domain.User
			if found, err := utils.GetCache(ctx, rdb, "users:all", &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"users": cached, "cached": true})
				return
			}
		}
		users, err := s.ListUsers(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, "users:all", users, listCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"users": users, "cached": false})
	}
}

// ListAllTransactionsHandler returns every transaction, newest first.
func ListAllTransactionsHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if rdb != nil {
			var cached []domain.Transaction
			if found, err := utils.GetCache(ctx, rdb, "txs:all", &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"transactions": cached, "cached": true})
				return
			}
		}
		txs, err := s.ListTransactions(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		sortTransactions(txs)
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, "txs:all", txs, listCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txs, "cached": false})
	}
}

// OverrideBalancesRequest sets both balance fields directly. Values are
// not validated; negative balances are accepted.
type OverrideBalancesRequest struct {
	CashAtHand int64 `json:"cashAtHand"`
	CashInBank int64 `json:"cashInBank"`
}

// OverrideBalancesHandler is the admin's direct balance reset for a
// worker. Bypasses the transaction-derived computation entirely.
func OverrideBalancesHandler(proc *ledger.Processor, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("id")
		var req OverrideBalancesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		ctx := c.Request.Context()
		user, err := proc.Override(ctx, userID, req.CashAtHand, req.CashInBank)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("balance override failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update balances"})
			return
		}
		invalidate(ctx, rdb,
			"balances:user:"+userID,
			"users:all",
			"notifs:"+userID,
		)
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// ExportHandler dumps the three collections as one JSON snapshot.
func ExportHandler(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		users, err := s.ListUsers(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export users"})
			return
		}
		txs, err := s.ListTransactions(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export transactions"})
			return
		}
		notifs, err := s.ListNotifications(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users":         users,
			"transactions":  txs,
			"notifications": notifs,
		})
	}
}

// ResetHandler clears all three collections and reseeds the default
// admin. Destructive; admin-only by routing.
func ResetHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := s.Reset(ctx); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset database"})
			return
		}
		if err := db.EnsureAdmin(ctx, s); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reseed admin"})
			return
		}
		if rdb != nil {
			_ = rdb.FlushDB(ctx).Err()
		}
		logrus.Warn("database reset by admin")
		c.JSON(http.StatusOK, gin.H{"message": "Database reset"})
	}
}
