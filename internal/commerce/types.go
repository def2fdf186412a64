package commerce

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/tidwall/gjson"
)

var errNotObject = errors.New("commerce document is not a JSON object")

// Record is a raw commerce document (product or variant) with every field
// the platform returned.
type Record map[string]interface{}

// ID returns the record's "id" field as a string.
func (r Record) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

// AccountMetadata holds the notification preferences stored on an account.
type AccountMetadata struct {
	PrefersSmsNotification   bool `json:"prefersSmsNotification"`
	PrefersPushNotification  bool `json:"prefersPushNotification"`
	PrefersEmailNotification bool `json:"prefersEmailNotification"`
}

// AccountPayload is the body of POST /accounts.
type AccountPayload struct {
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	EmailOptin bool            `json:"email_optin"`
	Password   string          `json:"password"`
	Phone      string          `json:"phone"`
	Metadata   AccountMetadata `json:"metadata"`
}

// UserAccount is the account the platform created. It marshals back to the
// exact document the platform returned. Typed fields are read leniently: a
// field whose type drifts upstream is left zero instead of failing the decode.
type UserAccount struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Notes       string     `json:"notes"`
	Currency    string     `json:"currency"`
	Type        string     `json:"type"`
	OrderCount  int        `json:"order_count"`
	OrderValue  float64    `json:"order_value"`
	Balance     float64    `json:"balance"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DateCreated *time.Time `json:"date_created"`
	DateUpdated *time.Time `json:"date_updated"`

	raw json.RawMessage
}

func (a *UserAccount) UnmarshalJSON(b []byte) error {
	doc, err := parseObject(b)
	if err != nil {
		return err
	}
	*a = UserAccount{
		ID:          str(doc, "id"),
		Name:        str(doc, "name"),
		Email:       str(doc, "email"),
		Notes:       str(doc, "notes"),
		Currency:    str(doc, "currency"),
		Type:        str(doc, "type"),
		OrderCount:  int(num(doc, "order_count")),
		OrderValue:  num(doc, "order_value"),
		Balance:     num(doc, "balance"),
		FirstName:   str(doc, "first_name"),
		LastName:    str(doc, "last_name"),
		DateCreated: timestamp(doc, "date_created"),
		DateUpdated: timestamp(doc, "date_updated"),
		raw:         append(json.RawMessage(nil), b...),
	}
	return nil
}

func (a UserAccount) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return a.raw, nil
	}
	type plain UserAccount
	return json.Marshal(plain(a))
}

// Discount is one discount rule of a promotion.
type Discount struct {
	Type         string  `json:"type"`
	ValueType    string  `json:"value_type"`
	ValueFixed   float64 `json:"value_fixed"`
	ValuePercent float64 `json:"value_percent,omitempty"`
}

// Promotion is a read-only projection of a promotional campaign. Like
// UserAccount it marshals back to the platform's document unchanged.
type Promotion struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Active           bool       `json:"active"`
	Currency         string     `json:"currency"`
	Description      string     `json:"description"`
	Discounts        []Discount `json:"discounts"`
	LimitAccountUses int        `json:"limit_account_uses"`
	LimitUses        int        `json:"limit_uses"`
	UseCount         int        `json:"use_count"`
	DateStart        *time.Time `json:"date_start"`
	DateEnd          *time.Time `json:"date_end"`
	DateCreated      *time.Time `json:"date_created"`
	DateUpdated      *time.Time `json:"date_updated"`

	raw json.RawMessage
}

func (p *Promotion) UnmarshalJSON(b []byte) error {
	doc, err := parseObject(b)
	if err != nil {
		return err
	}
	var discounts []Discount
	for _, d := range doc.Get("discounts").Array() {
		if !d.IsObject() {
			continue
		}
		discounts = append(discounts, Discount{
			Type:         str(d, "type"),
			ValueType:    str(d, "value_type"),
			ValueFixed:   num(d, "value_fixed"),
			ValuePercent: num(d, "value_percent"),
		})
	}
	*p = Promotion{
		ID:               str(doc, "id"),
		Name:             str(doc, "name"),
		Active:           doc.Get("active").Type == gjson.True,
		Currency:         str(doc, "currency"),
		Description:      str(doc, "description"),
		Discounts:        discounts,
		LimitAccountUses: int(num(doc, "limit_account_uses")),
		LimitUses:        int(num(doc, "limit_uses")),
		UseCount:         int(num(doc, "use_count")),
		DateStart:        timestamp(doc, "date_start"),
		DateEnd:          timestamp(doc, "date_end"),
		DateCreated:      timestamp(doc, "date_created"),
		DateUpdated:      timestamp(doc, "date_updated"),
		raw:              append(json.RawMessage(nil), b...),
	}
	return nil
}

func (p Promotion) MarshalJSON() ([]byte, error) {
	if p.raw != nil {
		return p.raw, nil
	}
	type plain Promotion
	return json.Marshal(plain(p))
}

func parseObject(b []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(b) {
		return gjson.Result{}, errors.New("invalid JSON")
	}
	doc := gjson.ParseBytes(b)
	if !doc.IsObject() {
		return gjson.Result{}, errNotObject
	}
	return doc, nil
}

func str(doc gjson.Result, path string) string {
	if v := doc.Get(path); v.Type == gjson.String {
		return v.Str
	}
	return ""
}

func num(doc gjson.Result, path string) float64 {
	if v := doc.Get(path); v.Type == gjson.Number {
		return v.Num
	}
	return 0
}

// timestamp returns nil for a missing or unparseable date.
func timestamp(doc gjson.Result, path string) *time.Time {
	v := doc.Get(path)
	if v.Type != gjson.String {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.Str)
	if err != nil {
		return nil
	}
	return &t
}
