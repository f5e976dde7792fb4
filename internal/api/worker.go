package api

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"agentledger/internal/domain"
	"agentledger/internal/ledger"
	"agentledger/internal/notify"
	"agentledger/internal/store"
	"agentledger/internal/utils"
)

const (
	listCacheTTL  = 60 * time.Second
	notifCacheTTL = 10 * time.Second // shorter than the UI's 15s poll
)

// invalidate drops cache keys after a mutation. Best-effort: a cache
// miss is always safe, so errors are ignored. rdb may be nil in tests.
func invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb != nil {
		_ = utils.DeleteCache(ctx, rdb, keys...)
	}
}

// notificationScope resolves which notifications the actor sees: the
// admin gets broadcast records only, a worker gets their own.
func notificationScope(c *gin.Context) string {
	if c.GetString("role") == domain.RoleAdmin {
		return domain.RecipientAdmin
	}
	return c.GetString("userID")
}

// CreateTransactionRequest carries a worker-logged cash movement.
// Amount and charge are deliberately unvalidated for sign or range;
// zero and negative values pass through.
type CreateTransactionRequest struct {
	Type        domain.TransactionType `json:"type" binding:"required"`
	Amount      float64                `json:"amount"`
	Charge      float64                `json:"charge"`
	Description string                 `json:"description"`
}

// CreateTransactionHandler logs a transaction for the authenticated
// worker. The server assigns the record key, today's date and the
// creation timestamp; the owner's display name is copied in and never
// re-synced afterwards.
func CreateTransactionHandler(s store.Store, proc *ledger.Processor, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		var req CreateTransactionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !req.Type.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown transaction type"})
			return
		}
		ctx := c.Request.Context()
		user, err := s.GetUser(ctx, userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		now := time.Now()
		tx := domain.Transaction{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			UserName:    user.FullName,
			Date:        now.Format("2006-01-02"),
			Type:        req.Type,
			Amount:      req.Amount,
			Charge:      req.Charge,
			Description: req.Description,
			Timestamp:   now.UnixMilli(),
		}
		committed, err := proc.Process(ctx, &tx)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"type":    req.Type,
				"error":   err.Error(),
			}).Error("transaction processing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process transaction"})
			return
		}
		invalidate(ctx, rdb,
			"txs:user:"+userID,
			"txs:all",
			"balances:user:"+userID,
			"users:all",
			"notifs:"+domain.RecipientAdmin,
		)
		c.JSON(http.StatusCreated, gin.H{"transaction": committed})
	}
}

// MeHandler returns the authenticated user's record with balances.
func MeHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		ctx := c.Request.Context()
		cacheKey := "balances:user:" + userID
		if rdb != nil {
			var cached domain.User
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"user": cached, "cached": true})
				return
			}
		}
		user, err := s.GetUser(ctx, userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, user, listCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"user": user, "cached": false})
	}
}

// ListMyTransactionsHandler returns the caller's transactions, newest
// first. Ordering is applied here after retrieval.
func ListMyTransactionsHandler(s store.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		ctx := c.Request.Context()
		cacheKey := "txs:user:" + userID
		if rdb != nil {
			var cached []domain.Transaction
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"transactions": cached, "cached": true})
				return
			}
		}
		txs, err := s.ListTransactionsByUser(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		sortTransactions(txs)
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, txs, listCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"transactions": txs, "cached": false})
	}
}

// ListNotificationsHandler returns the actor's notification feed,
// newest first. Clients poll this on a fixed interval.
func ListNotificationsHandler(n *notify.Notifier, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := notificationScope(c)
		ctx := c.Request.Context()
		cacheKey := "notifs:" + scope
		if rdb != nil {
			var cached []domain.Notification
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"notifications": cached, "cached": true})
				return
			}
		}
		notifs, err := n.List(ctx, scope)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
			return
		}
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, notifs, notifCacheTTL)
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifs, "cached": false})
	}
}

// MarkNotificationReadHandler flips one notification's read flag.
func MarkNotificationReadHandler(n *notify.Notifier, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := n.MarkRead(ctx, c.Param("id")); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification read"})
			return
		}
		invalidate(ctx, rdb, "notifs:"+notificationScope(c))
		c.JSON(http.StatusOK, gin.H{"message": "Notification marked read"})
	}
}

// MarkAllNotificationsReadHandler flips every currently-unread record
// in the actor's scope. Records created mid-call may stay unread.
func MarkAllNotificationsReadHandler(n *notify.Notifier, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := notificationScope(c)
		ctx := c.Request.Context()
		if err := n.MarkAllRead(ctx, scope); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications read"})
			return
		}
		invalidate(ctx, rdb, "notifs:"+scope)
		c.JSON(http.StatusOK, gin.H{"message": "All notifications marked read"})
	}
}

// sortTransactions orders newest-creation-first by timestamp.
func sortTransactions(txs []domain.Transaction) {
	sort.Slice(txs, func(i, j int) bool { return txs[i].Timestamp > txs[j].Timestamp })
}
