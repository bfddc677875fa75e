package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionRegister           AuditAction = "REGISTER"
	AuditActionLogin              AuditAction = "LOGIN"
	AuditActionDepositCreate      AuditAction = "DEPOSIT_CREATE"
	AuditActionDepositStatus      AuditAction = "DEPOSIT_STATUS"
	AuditActionDepositDelete      AuditAction = "DEPOSIT_DELETE"
	AuditActionWithdrawalCreate   AuditAction = "WITHDRAWAL_CREATE"
	AuditActionWithdrawalStatus   AuditAction = "WITHDRAWAL_STATUS"
	AuditActionWithdrawalDelete   AuditAction = "WITHDRAWAL_DELETE"
	AuditActionConvert            AuditAction = "CONVERT"
	AuditActionStake              AuditAction = "STAKE"
	AuditActionUnstake            AuditAction = "UNSTAKE"
	AuditActionSubscribe          AuditAction = "SUBSCRIBE"
	AuditActionSignalPurchase     AuditAction = "SIGNAL_PURCHASE"
	AuditActionReferralWithdrawal AuditAction = "REFERRAL_WITHDRAW"
	AuditActionUserVerification   AuditAction = "USER_VERIFICATION"
	AuditActionPayoutWalletSave   AuditAction = "PAYOUT_WALLET_SAVE"
	AuditActionPayoutWalletDelete AuditAction = "PAYOUT_WALLET_DELETE"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Actor        string      `json:"actor"` // "user" or the operator key id
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
