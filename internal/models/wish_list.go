package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishListType says whether a list collects gifts to receive, to give, or both.
type WishListType string

const (
	WishListTypeToReceive WishListType = "to_receive"
	WishListTypeToGive    WishListType = "to_give"
	WishListTypeMixed     WishListType = "mixed"
)

// WishListStatus is active or archived.
type WishListStatus string

const (
	WishListStatusActive   WishListStatus = "active"
	WishListStatusArchived WishListStatus = "archived"
)

// ItemStatus tracks whether a wish list item has been bought.
type ItemStatus string

const (
	ItemStatusToBuy     ItemStatus = "to_buy"
	ItemStatusPurchased ItemStatus = "purchased"
)

// ItemPriority ranks items within a list.
type ItemPriority string

const (
	ItemPriorityMustHave ItemPriority = "must_have"
	ItemPriorityWanted   ItemPriority = "wanted"
	ItemPriorityBonus    ItemPriority = "bonus"
)

// WishList is a purchase goal holding priced items.
type WishList struct {
	Base
	UserID          string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Name            string              `gorm:"size:100;not null" json:"name"`
	Description     string              `json:"description"`
	ListType        WishListType        `gorm:"size:20;not null;default:'mixed'" json:"list_type"`
	TargetDate      *time.Time          `json:"target_date"`
	BudgetAllocated decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"budget_allocated"`
	Status          WishListStatus      `gorm:"size:20;not null;default:'active'" json:"status"`

	Items []WishListItem `gorm:"foreignKey:WishListID" json:"items,omitempty"`
}

// WishListItem is one entry of a wish list. It is reached only through
// its list, which carries the owner.
type WishListItem struct {
	Base
	WishListID    string          `gorm:"type:uuid;not null;index" json:"wish_list_id"`
	TransactionID *string         `gorm:"type:uuid;index" json:"transaction_id"`
	Name          string          `gorm:"size:200;not null" json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Quantity      int             `gorm:"not null;default:1" json:"quantity"`
	URL           string          `json:"url"`
	ImageURL      string          `json:"image_url"`
	Priority      ItemPriority    `gorm:"size:20;not null;default:'wanted'" json:"priority"`
	Status        ItemStatus      `gorm:"size:20;not null;default:'to_buy'" json:"status"`
	Recipient     string          `gorm:"size:100" json:"recipient"`
	PurchasedDate *time.Time      `json:"purchased_date"`
	SortOrder     int             `gorm:"default:0" json:"sort_order"`
}

// Cost is price times quantity.
func (i *WishListItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
