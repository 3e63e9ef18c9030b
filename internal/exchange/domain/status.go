package domain

// OrderStatus 订单状态
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusDraft     OrderStatus = "DRAFT"
	StatusOpen      OrderStatus = "OPEN"
	StatusMatched   OrderStatus = "MATCHED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Mutable 仅 PENDING/DRAFT/OPEN 可以修改或取消
func (s OrderStatus) Mutable() bool {
	switch s {
	case StatusPending, StatusDraft, StatusOpen:
		return true
	default:
		return false
	}
}

// Unpublished 尚未发布的状态
func (s OrderStatus) Unpublished() bool {
	return s == StatusPending || s == StatusDraft
}

// OrderAction 卖单创建/更新时的动作
type OrderAction string

const (
	ActionDraft   OrderAction = "draft"
	ActionPublish OrderAction = "publish"
)

// Status 动作对应的目标状态
func (a OrderAction) Status() OrderStatus {
	if a == ActionPublish {
		return StatusOpen
	}
	return StatusDraft
}

// OrderKind 订单方向
type OrderKind string

const (
	KindSell OrderKind = "sell"
	KindBuy  OrderKind = "buy"
)
