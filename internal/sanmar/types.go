package sanmar

import (
	"encoding/xml"
	"strings"

	"github.com/shopspring/decimal"
)

// Credentials authenticate every SanMar call.
type Credentials struct {
	Username       string
	Password       string
	CustomerNumber string
}

// Valid reports whether the username and password are present.
func (c Credentials) Valid() bool {
	return c.Username != "" && c.Password != ""
}

// Amount is a price element that may be empty or xsi:nil.
type Amount struct {
	Value decimal.Decimal
	Valid bool
}

func (a *Amount) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*a = Amount{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	*a = Amount{Value: d, Valid: true}
	return nil
}

// Float returns the amount as float64, or 0 when absent.
func (a Amount) Float() float64 {
	if !a.Valid {
		return 0
	}
	f, _ := a.Value.Float64()
	return f
}

// Int truncates the amount to a whole number; quantities are sent as decimals.
func (a Amount) Int() int {
	if !a.Valid {
		return 0
	}
	return int(a.Value.IntPart())
}

// Positive reports whether the amount is present and above zero.
func (a Amount) Positive() bool {
	return a.Valid && a.Value.IsPositive()
}

// ─── SanMar web services shared ──────────────────────────────────────────────

type webServiceUser struct {
	CustomerNumber string `xml:"sanMarCustomerNumber"`
	Username       string `xml:"sanMarUserName"`
	Password       string `xml:"sanMarUserPassword"`
}

func newWebServiceUser(c Credentials) webServiceUser {
	return webServiceUser{CustomerNumber: c.CustomerNumber, Username: c.Username, Password: c.Password}
}

// ─── ProductInfo ─────────────────────────────────────────────────────────────

type productInfoRequest struct {
	XMLName xml.Name `xml:"impl:getProductInfoByStyleColorSize"`
	Arg0    struct {
		Style string `xml:"style"`
		Color string `xml:"color,omitempty"`
		Size  string `xml:"size,omitempty"`
	} `xml:"arg0"`
	Arg1 webServiceUser `xml:"arg1"`
}

type productInfoResponse struct {
	Return ProductInfoResult `xml:"return"`
}

// ProductInfoResult is the decoded getProductInfoByStyleColorSize response.
type ProductInfoResult struct {
	ErrorOccurred bool              `xml:"errorOccured"`
	Message       string            `xml:"message"`
	Items         []ProductInfoItem `xml:"listResponse"`
}

// ProductInfoItem is one style/color/size row.
type ProductInfoItem struct {
	Basic ProductBasicInfo `xml:"productBasicInfo"`
	Image ProductImageInfo `xml:"productImageInfo"`
	Price ProductPriceInfo `xml:"productPriceInfo"`
}

type ProductBasicInfo struct {
	Style          string `xml:"style"`
	CatalogColor   string `xml:"catalogColor"`
	Color          string `xml:"color"`
	Size           string `xml:"size"`
	UniqueKey      string `xml:"uniqueKey"`
	AvailableSizes string `xml:"availableSizes"`
	Title          string `xml:"productTitle"`
	Description    string `xml:"productDescription"`
	Brand          string `xml:"brandName"`
	Category       string `xml:"category"`
	CaseSize       int    `xml:"caseSize"`
}

type ProductImageInfo struct {
	ColorProductImage string `xml:"colorProductImage"`
	ColorSwatchImage  string `xml:"colorSwatchImage"`
	ProductImage      string `xml:"productImage"`
	ThumbnailImage    string `xml:"thumbnailImage"`
}

type ProductPriceInfo struct {
	PiecePrice Amount `xml:"piecePrice"`
	CasePrice  Amount `xml:"casePrice"`
	SalePrice  Amount `xml:"salePrice"`
	MyPrice    Amount `xml:"myPrice"`
	SaleStart  string `xml:"saleStartDate"`
	SaleEnd    string `xml:"saleEndDate"`
}

// ─── SanMar Pricing Service ──────────────────────────────────────────────────

type pricingRequest struct {
	XMLName xml.Name `xml:"impl:getPricing"`
	Arg0    struct {
		Style string `xml:"style"`
		Color string `xml:"color,omitempty"`
		Size  string `xml:"size,omitempty"`
	} `xml:"arg0"`
	Arg1 webServiceUser `xml:"arg1"`
}

type pricingResponse struct {
	Return PricingResult `xml:"return"`
}

// PricingResult is the decoded getPricing response.
type PricingResult struct {
	ErrorOccurred bool          `xml:"errorOccurred"`
	Message       string        `xml:"message"`
	Items         []PricingItem `xml:"listResponse"`
}

type PricingItem struct {
	Style      string `xml:"style"`
	Color      string `xml:"color"`
	Size       string `xml:"size"`
	PiecePrice Amount `xml:"piecePrice"`
	CasePrice  Amount `xml:"casePrice"`
	SalePrice  Amount `xml:"salePrice"`
	MyPrice    Amount `xml:"myPrice"`
	SaleStart  string `xml:"saleStartDate"`
	SaleEnd    string `xml:"saleEndDate"`
}

// ─── PromoStandards Inventory 2.0.0 ──────────────────────────────────────────

type inventoryRequest struct {
	XMLName   xml.Name `xml:"ns:GetInventoryLevelsRequest"`
	WSVersion string   `xml:"shar:wsVersion"`
	ID        string   `xml:"shar:id"`
	Password  string   `xml:"shar:password"`
	ProductID string   `xml:"shar:productId"`
}

type inventoryResponse struct {
	Inventory       InventoryResult  `xml:"Inventory"`
	ServiceMessages []ServiceMessage `xml:"ServiceMessageArray>ServiceMessage"`
}

type ServiceMessage struct {
	Code        string `xml:"code"`
	Description string `xml:"description"`
	Severity    string `xml:"severity"`
}

// InventoryResult is the decoded Inventory element.
type InventoryResult struct {
	ProductID string          `xml:"productId"`
	Parts     []PartInventory `xml:"PartInventoryArray>PartInventory"`
}

type PartInventory struct {
	PartID      string              `xml:"partId"`
	MainPart    bool                `xml:"mainPart"`
	PartColor   string              `xml:"partColor"`
	LabelSize   string              `xml:"labelSize"`
	Description string              `xml:"partDescription"`
	Available   Amount              `xml:"quantityAvailable>Quantity>value"`
	Locations   []InventoryLocation `xml:"InventoryLocationArray>InventoryLocation"`
}

type InventoryLocation struct {
	ID       string `xml:"inventoryLocationId"`
	Name     string `xml:"inventoryLocationName"`
	Postal   string `xml:"postalCode"`
	Country  string `xml:"country"`
	Quantity Amount `xml:"inventoryLocationQuantity>Quantity>value"`
}

// ─── PromoStandards Pricing and Configuration 1.0.0 ──────────────────────────

// PriceType selects which PromoStandards price list is returned.
type PriceType string

const (
	PriceList     PriceType = "List"
	PriceNet      PriceType = "Net"
	PriceCustomer PriceType = "Customer"
)

type configurationRequest struct {
	XMLName              xml.Name `xml:"ns:GetConfigurationAndPricingRequest"`
	WSVersion            string   `xml:"shar:wsVersion"`
	ID                   string   `xml:"shar:id"`
	Password             string   `xml:"shar:password"`
	ProductID            string   `xml:"shar:productId"`
	Currency             string   `xml:"shar:currency"`
	FobID                string   `xml:"shar:fobId"`
	PriceType            string   `xml:"shar:priceType"`
	LocalizationCountry  string   `xml:"shar:localizationCountry"`
	LocalizationLanguage string   `xml:"shar:localizationLanguage"`
	ConfigurationType    string   `xml:"shar:configurationType"`
}

type configurationResponse struct {
	Configuration ConfigurationResult `xml:"Configuration"`
	ErrorMessage  *ServiceMessage     `xml:"ErrorMessage"`
}

// ConfigurationResult is the decoded Configuration element.
type ConfigurationResult struct {
	ProductID string        `xml:"productId"`
	Parts     []PartPricing `xml:"PartArray>Part"`
}

type PartPricing struct {
	PartID      string      `xml:"partId"`
	Description string      `xml:"partDescription"`
	Prices      []PartPrice `xml:"PartPriceArray>PartPrice"`
}

type PartPrice struct {
	MinQuantity  int    `xml:"minQuantity"`
	Price        Amount `xml:"price"`
	DiscountCode string `xml:"discountCode"`
	PriceUOM     string `xml:"priceUom"`
}

// UnitPrice returns the single-piece price (minQuantity 1), falling back to the
// lowest quantity break.
func (p PartPricing) UnitPrice() (Amount, bool) {
	var best *PartPrice
	for i := range p.Prices {
		pp := &p.Prices[i]
		if !pp.Price.Valid {
			continue
		}
		if pp.MinQuantity == 1 {
			return pp.Price, true
		}
		if best == nil || pp.MinQuantity < best.MinQuantity {
			best = pp
		}
	}
	if best == nil {
		return Amount{}, false
	}
	return best.Price, true
}
