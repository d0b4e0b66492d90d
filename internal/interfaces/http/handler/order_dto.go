package handler

import (
	"time"

	"github.com/sellerdesk/sellerdesk/internal/domain/order"
)

// ShipRequest is the mark-shipped payload
type ShipRequest struct {
	TrackingCode string `json:"tracking_code"`
	TrackingURL  string `json:"tracking_url" binding:"omitempty,url"`
}

// PackagingAssignRequest assigns a packaging type to an order
type PackagingAssignRequest struct {
	PackagingID *int64 `json:"packaging_id" binding:"required,min=-1"`
}

// NoteRequest replaces the seller note. An empty note clears it.
type NoteRequest struct {
	Note string `json:"note"`
}

// PackagingRequest creates or updates a packaging type
type PackagingRequest struct {
	Name       string `json:"name" binding:"required"`
	Stock      int    `json:"stock" binding:"min=0"`
	RestockURL string `json:"restock_url" binding:"omitempty,url"`
}

// OrderSummaryResponse is the list rendering of an order
type OrderSummaryResponse struct {
	ID           int64      `json:"id"`
	Status       string     `json:"status"`
	Display      string     `json:"display_status"`
	CreatedAt    time.Time  `json:"created_at"`
	FulfilledAt  *time.Time `json:"fulfilled_at,omitempty"`
	Customer     string     `json:"customer"`
	Country      string     `json:"country"`
	Items        string     `json:"items"`
	Total        string     `json:"total"`
	Currency     string     `json:"currency"`
	Packaging    int64      `json:"packaging"`
	Note         string     `json:"note,omitempty"`
	TrackingCode string     `json:"tracking_code,omitempty"`
}

// OrderItemResponse is the detail rendering of one order line
type OrderItemResponse struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       string  `json:"price"`
	Weight      float64 `json:"weight"`
	Packaged    bool    `json:"packaged"`
	Options     string  `json:"options,omitempty"`
}

// OrderDetailResponse is the full rendering of an order
type OrderDetailResponse struct {
	OrderSummaryResponse
	Payout          string              `json:"payout"`
	PlatformFee     string              `json:"platform_fee"`
	PaymentFee      string              `json:"payment_fee"`
	ShippingMethod  string              `json:"shipping_method"`
	ShippingCost    string              `json:"shipping_cost"`
	ShippingAddress string              `json:"shipping_address"`
	TrackingURL     string              `json:"tracking_url,omitempty"`
	Weight          float64             `json:"weight"`
	CustomerEmail   string              `json:"customer_email"`
	EditURL         string              `json:"edit_url"`
	ItemList        []OrderItemResponse `json:"item_list"`
}

// PackagingResponse renders a packaging type
type PackagingResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Stock      int    `json:"stock"`
	RestockURL string `json:"restock_url,omitempty"`
	InUse      int    `json:"in_use"`
}

func toOrderSummary(o order.Order) OrderSummaryResponse {
	return OrderSummaryResponse{
		ID:           o.ID,
		Status:       o.Status,
		Display:      o.StatusString(),
		CreatedAt:    o.CreatedAt,
		FulfilledAt:  o.FulfilledAt,
		Customer:     o.Shipping.Address.FirstName + " " + o.Shipping.Address.LastName,
		Country:      o.Shipping.Address.Country,
		Items:        o.ItemListing(),
		Total:        o.Total.StringFixed(2),
		Currency:     o.Currency,
		Packaging:    o.Packaging,
		Note:         o.Note,
		TrackingCode: o.Tracking.Code,
	}
}

func toOrderDetail(o order.Order, sellerBase string) OrderDetailResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		options := ""
		for j, opt := range item.Options {
			if j > 0 {
				options += ", "
			}
			options += opt.Name + ": " + opt.Choice
		}
		items[i] = OrderItemResponse{
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Price.StringFixed(2),
			Weight:      item.Weight,
			Packaged:    item.Packaged,
			Options:     options,
		}
	}

	return OrderDetailResponse{
		OrderSummaryResponse: toOrderSummary(o),
		Payout:               o.Payout.StringFixed(2),
		PlatformFee:          o.PlatformFee.StringFixed(2),
		PaymentFee:           o.PaymentFee.StringFixed(2),
		ShippingMethod:       o.Shipping.Method,
		ShippingCost:         o.Shipping.Cost.StringFixed(2),
		ShippingAddress:      o.FormatShippingAddress(),
		TrackingURL:          o.Tracking.URL,
		Weight:               o.CalcWeight(),
		CustomerEmail:        o.CustomerEmail,
		EditURL:              o.EditURL(sellerBase),
		ItemList:             items,
	}
}
