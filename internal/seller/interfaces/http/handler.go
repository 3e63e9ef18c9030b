package http

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	exchange "github.com/wyfcoding/p2pexchange/internal/exchange/domain"
	exchangehttp "github.com/wyfcoding/p2pexchange/internal/exchange/interfaces/http"
	"github.com/wyfcoding/p2pexchange/internal/seller/application"
	"github.com/wyfcoding/p2pexchange/pkg/response"
)

// SellOrderHandler 卖单 HTTP 处理器
type SellOrderHandler struct {
	cmd   *application.SellOrderCommandService
	query *application.SellOrderQueryService
}

// NewSellOrderHandler 创建卖单 HTTP 处理器
func NewSellOrderHandler(cmd *application.SellOrderCommandService, query *application.SellOrderQueryService) *SellOrderHandler {
	return &SellOrderHandler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由，换算接口允许匿名访问
func (h *SellOrderHandler) RegisterRoutes(protected, optional *gin.RouterGroup) {
	api := protected.Group("/p2p/sellers")
	{
		api.POST("/createSellerOrder", h.CreateSellOrder)
		api.GET("/findAllSellerOrders", h.FindAll)
		api.GET("/public", h.FindPublic)
		api.GET("/sell-orders", h.ListMine)
		api.GET("/:id", h.GetSellOrder)
		api.PATCH("/:id", h.UpdateSellOrder)
		api.DELETE("/:id", h.CancelSellOrder)
		api.POST("/:id/request-negotiation", h.RequestNegotiation)
	}
	optional.POST("/p2p/sellers/calculate-conversion/:sellerId", h.CalculateConversion)
}

// CreateSellOrderRequest 创建卖单请求
type CreateSellOrderRequest struct {
	exchangehttp.TermsRequest
	TermsOfPayment string `json:"termsOfPayment" binding:"max=1000"`
	Action         string `json:"action" binding:"omitempty,oneof=draft publish"`
}

// UpdateSellOrderRequest 更新卖单请求
type UpdateSellOrderRequest struct {
	exchangehttp.PatchRequest
	TermsOfPayment *string `json:"termsOfPayment" binding:"omitempty,max=1000"`
	Action         *string `json:"action" binding:"omitempty,oneof=draft publish"`
}

// RequestNegotiationRequest 议价请求
type RequestNegotiationRequest struct {
	ProposedRate *decimal.Decimal `json:"proposedRate" binding:"required"`
	Message      string           `json:"message" binding:"max=500"`
}

// CreateSellOrder 创建卖单
func (h *SellOrderHandler) CreateSellOrder(c *gin.Context) {
	var req CreateSellOrderRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	terms, err := req.Terms()
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.cmd.CreateSellOrder(c.Request.Context(), application.CreateSellOrderCommand{
		UserID:         exchangehttp.CurrentUser(c),
		Terms:          terms,
		TermsOfPayment: req.TermsOfPayment,
		Action:         exchange.OrderAction(req.Action),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Sell order created successfully", dto)
}

// FindAll 全部可交易卖单
func (h *SellOrderHandler) FindAll(c *gin.Context) {
	filter, err := exchangehttp.BindListFilter(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.query.FindAll(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "Sell orders retrieved successfully", page.Items, page.Total, page.CurrentPage, page.TotalPages)
}

// FindPublic 其他用户的可交易卖单
func (h *SellOrderHandler) FindPublic(c *gin.Context) {
	filter, err := exchangehttp.BindListFilter(c, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.query.FindPublic(c.Request.Context(), exchangehttp.CurrentUser(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "Public sell orders retrieved successfully", page.Items, page.Total, page.CurrentPage, page.TotalPages)
}

// ListMine 自己的卖单
func (h *SellOrderHandler) ListMine(c *gin.Context) {
	filter, err := exchangehttp.BindListFilter(c, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.query.ListMine(c.Request.Context(), exchangehttp.CurrentUser(c), filter.Page, filter.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, "Your sell orders retrieved successfully", page.Items, page.Total, page.CurrentPage, page.TotalPages)
}

// GetSellOrder 卖单详情
func (h *SellOrderHandler) GetSellOrder(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	dto, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Sell order retrieved successfully", dto)
}

// UpdateSellOrder 更新卖单
func (h *SellOrderHandler) UpdateSellOrder(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req UpdateSellOrderRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		response.Error(c, err)
		return
	}

	cmd := application.UpdateSellOrderCommand{
		OrderID:        id,
		UserID:         exchangehttp.CurrentUser(c),
		Patch:          patch,
		TermsOfPayment: req.TermsOfPayment,
	}
	if req.Action != nil {
		action := exchange.OrderAction(*req.Action)
		cmd.Action = &action
	}

	dto, err := h.cmd.UpdateSellOrder(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Sell order updated successfully", dto)
}

// CancelSellOrder 取消卖单
func (h *SellOrderHandler) CancelSellOrder(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	dto, err := h.cmd.CancelSellOrder(c.Request.Context(), id, exchangehttp.CurrentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Sell order cancelled successfully", dto)
}

// RequestNegotiation 发起议价
func (h *SellOrderHandler) RequestNegotiation(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req RequestNegotiationRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.cmd.RequestNegotiation(c.Request.Context(), application.RequestNegotiationCommand{
		SellOrderID:  id,
		BuyerID:      exchangehttp.CurrentUser(c),
		ProposedRate: *req.ProposedRate,
		Message:      req.Message,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Negotiation requested successfully", dto)
}

// CalculateConversion 按卖单汇率换算
func (h *SellOrderHandler) CalculateConversion(c *gin.Context) {
	id, err := exchangehttp.ParseID(c, "sellerId")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req exchangehttp.ConversionRequest
	if err := exchangehttp.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	amount, from, to, err := req.Parse()
	if err != nil {
		response.Error(c, err)
		return
	}

	dto, err := h.cmd.CalculateConversion(c.Request.Context(), application.ConversionQuery{
		OrderID:      id,
		Amount:       amount,
		FromCurrency: from,
		ToCurrency:   to,
		RequesterID:  exchangehttp.CurrentUser(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, "Conversion calculated successfully", dto)
}
