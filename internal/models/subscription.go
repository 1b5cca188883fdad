package models

// SubscriptionModel is one newsletter recipient. Rows are never deleted;
// unsubscribing clears IsActive.
type SubscriptionModel struct {
	Base
	Email    string            `json:"email"     gorm:"size:254;uniqueIndex;not null"`
	IsActive bool              `json:"is_active" gorm:"index;not null;default:false"`
	Profile  map[string]string `json:"profile"   gorm:"type:longtext;serializer:json"`
}

func (SubscriptionModel) TableName() string { return "newsletter_subscriptions" }

// Clone returns a deep copy so callers can hand records to observers
// without sharing the profile map.
func (s *SubscriptionModel) Clone() *SubscriptionModel {
	if s == nil {
		return nil
	}
	out := *s
	if s.Profile != nil {
		out.Profile = make(map[string]string, len(s.Profile))
		for k, v := range s.Profile {
			out.Profile[k] = v
		}
	}
	return &out
}
