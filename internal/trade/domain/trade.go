// Package domain P2P 交易记录（只读），仅用于阻止有进行中交易的挂单被取消
package domain

// Status 交易状态
type Status string

const (
	StatusPending     Status = "pending"
	StatusActive      Status = "active"
	StatusPaymentSent Status = "payment_sent"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusDisputed    Status = "disputed"
)

// ActiveStatuses 进行中的交易状态
var ActiveStatuses = []Status{StatusPending, StatusActive, StatusPaymentSent}

// Trade P2P 交易
type Trade struct {
	ID          uint
	SellOrderID *uint
	BuyOrderID  *uint
	Status      Status
}

// Active 是否进行中
func (t *Trade) Active() bool {
	for _, s := range ActiveStatuses {
		if t.Status == s {
			return true
		}
	}
	return false
}
