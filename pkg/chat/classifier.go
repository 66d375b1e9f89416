// Package chat implements the site's scripted consultation widget: a
// keyword classifier that picks one of five canned replies, and a per-visitor
// widget holding the transcript.
package chat

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Topic identifies which canned reply a message resolved to.
type Topic string

const (
	TopicPricing  Topic = "pricing"
	TopicServices Topic = "services"
	TopicTimeline Topic = "timeline"
	TopicContact  Topic = "contact"
	TopicFallback Topic = "fallback"
)

// Canned replies.
const (
	PricingReply = "Chi phí thiết kế và thi công phụ thuộc vào nhiều yếu tố như diện tích, phong cách, vật liệu... " +
		"Bạn có thể liên hệ 0123 456 789 để được tư vấn chi tiết và báo giá miễn phí."
	ServicesReply = "Chúng tôi cung cấp các dịch vụ: Thiết kế kiến trúc, Thiết kế nội thất, Thi công xây dựng, " +
		"Tư vấn phong thủy, Giám sát công trình. Bạn quan tâm dịch vụ nào?"
	TimelineReply = "Thời gian thực hiện dự án thường từ 2-6 tháng tùy theo quy mô. Thiết kế: 2-4 tuần, " +
		"Thi công: 1.5-5 tháng. Chúng tôi sẽ có kế hoạch chi tiết cho từng dự án."
	ContactReply = "Bạn có thể liên hệ với chúng tôi qua: Điện thoại: 0123 456 789, Email: info@kientrucanlac.com, " +
		"hoặc đến trực tiếp văn phòng tại 123 Đường ABC, Quận XYZ, TP.HCM."
	FallbackReply = "Cảm ơn bạn đã quan tâm! Để được tư vấn chi tiết hơn, vui lòng liên hệ hotline 0123 456 789 " +
		"hoặc để lại thông tin, chúng tôi sẽ gọi lại trong thời gian sớm nhất."
)

// Rule maps a set of keywords to a reply. A rule matches when the
// lower-cased input contains any keyword as a substring.
type Rule struct {
	Topic    Topic
	Keywords []string
	Reply    string
}

func (r Rule) matches(input string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(input, kw) {
			return true
		}
	}
	return false
}

// Classifier evaluates rules in order; the first match wins.
// Matching is substring based, so partial-word collisions are possible.
type Classifier struct {
	rules    []Rule
	fallback string
}

// NewClassifier builds a classifier from ordered rules and a fallback reply.
// Keywords are normalized the same way as input.
func NewClassifier(rules []Rule, fallback string) *Classifier {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kws = append(kws, normalize(kw))
		}
		normalized = append(normalized, Rule{Topic: r.Topic, Keywords: kws, Reply: r.Reply})
	}
	return &Classifier{rules: normalized, fallback: fallback}
}

// DefaultRules returns the site's rules in priority order.
func DefaultRules() []Rule {
	return []Rule{
		{Topic: TopicPricing, Keywords: []string{"giá", "chi phí", "tiền"}, Reply: PricingReply},
		{Topic: TopicServices, Keywords: []string{"dịch vụ", "làm gì"}, Reply: ServicesReply},
		{Topic: TopicTimeline, Keywords: []string{"thời gian", "bao lâu"}, Reply: TimelineReply},
		{Topic: TopicContact, Keywords: []string{"liên hệ", "gặp"}, Reply: ContactReply},
	}
}

// DefaultClassifier returns the classifier used by the site widget.
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultRules(), FallbackReply)
}

// Match returns the topic the input resolves to.
func (c *Classifier) Match(input string) Topic {
	topic, _ := c.resolve(input)
	return topic
}

// Classify returns the canned reply for input.
func (c *Classifier) Classify(input string) string {
	_, reply := c.resolve(input)
	return reply
}

func (c *Classifier) resolve(input string) (Topic, string) {
	text := normalize(input)
	for _, r := range c.rules {
		if r.matches(text) {
			return r.Topic, r.Reply
		}
	}
	return TopicFallback, c.fallback
}

// normalize composes Vietnamese diacritics (NFC) so decomposed input from
// some keyboards still matches, then lower-cases.
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
