// internal/domain/models/mail.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateStatus is the lifecycle state of a mail template.
type TemplateStatus string

const (
	TemplateDraft    TemplateStatus = "draft"
	TemplateApproved TemplateStatus = "approved"
	TemplateArchived TemplateStatus = "archived"
)

var templateStatuses = []TemplateStatus{TemplateDraft, TemplateApproved, TemplateArchived}

// ParseTemplateStatus validates s as a TemplateStatus.
func ParseTemplateStatus(s string) (TemplateStatus, error) {
	return parseEnum("template status", s, templateStatuses)
}

func (t *TemplateStatus) UnmarshalText(b []byte) error {
	v, err := ParseTemplateStatus(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MailTemplate is a reusable email. Slug is unique.
//
// Version is the live revision number. Editing an approved template
// snapshots the live content as EmailTemplateVersion{Version: n} and
// advances Version to n+1.
type MailTemplate struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name       string              `bson:"name" json:"name"`
	Slug       string              `bson:"slug" json:"slug"`
	Subject    string              `bson:"subject" json:"subject"`
	BodyHTML   string              `bson:"body_html" json:"bodyHtml"`
	BodyText   string              `bson:"body_text,omitempty" json:"bodyText,omitempty"`
	Variables  []string            `bson:"variables,omitempty" json:"variables,omitempty"`
	SendPolicy map[string]any      `bson:"send_policy,omitempty" json:"sendPolicy,omitempty"`
	Status     TemplateStatus      `bson:"status" json:"status"`
	Version    int                 `bson:"version" json:"version"`
	CreatedBy  *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	ApprovedBy *primitive.ObjectID `bson:"approved_by,omitempty" json:"approvedBy,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// EmailTemplateVersion is an immutable snapshot of a template's prior
// approved content. (template_id, version) is unique.
type EmailTemplateVersion struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TemplateID primitive.ObjectID  `bson:"template_id" json:"templateId"`
	Version    int                 `bson:"version" json:"version"`
	Subject    string              `bson:"subject" json:"subject"`
	BodyHTML   string              `bson:"body_html" json:"bodyHtml"`
	BodyText   string              `bson:"body_text,omitempty" json:"bodyText,omitempty"`
	Variables  []string            `bson:"variables,omitempty" json:"variables,omitempty"`
	CreatedBy  *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"createdAt"`
}

// RequestType says whether a mail request uses a template or custom content.
type RequestType string

const (
	RequestTemplate RequestType = "template"
	RequestCustom   RequestType = "custom"
)

var requestTypes = []RequestType{RequestTemplate, RequestCustom}

// ParseRequestType validates s as a RequestType.
func ParseRequestType(s string) (RequestType, error) {
	return parseEnum("request type", s, requestTypes)
}

func (t *RequestType) UnmarshalText(b []byte) error {
	v, err := ParseRequestType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// RequestStatus is the lifecycle state of a mail request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestScheduled RequestStatus = "scheduled"
	RequestSent      RequestStatus = "sent"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

var requestStatuses = []RequestStatus{RequestPending, RequestApproved, RequestScheduled, RequestSent, RequestRejected, RequestCancelled}

// ParseRequestStatus validates s as a RequestStatus.
func ParseRequestStatus(s string) (RequestStatus, error) {
	return parseEnum("request status", s, requestStatuses)
}

func (t *RequestStatus) UnmarshalText(b []byte) error {
	v, err := ParseRequestStatus(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MailRequest is a proposal to send an email, awaiting review.
type MailRequest struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID       *primitive.ObjectID `bson:"company_id,omitempty" json:"companyId,omitempty"`
	CycleID         *primitive.ObjectID `bson:"cycle_id,omitempty" json:"companySeasonCycleId,omitempty"`
	RequestedBy     primitive.ObjectID  `bson:"requested_by" json:"requestedBy"`
	RequestType     RequestType         `bson:"request_type" json:"requestType"`
	TemplateID      *primitive.ObjectID `bson:"template_id,omitempty" json:"templateId,omitempty"`
	TemplateVersion *int                `bson:"template_version,omitempty" json:"templateVersion,omitempty"`
	CustomSubject   string              `bson:"custom_subject,omitempty" json:"customSubject,omitempty"`
	CustomBody      string              `bson:"custom_body,omitempty" json:"customBody,omitempty"`
	RecipientFilter map[string]any      `bson:"recipient_filter,omitempty" json:"recipientFilter,omitempty"`
	Urgency         *int                `bson:"urgency,omitempty" json:"urgency,omitempty"`
	Status          RequestStatus       `bson:"status" json:"status"`
	ReviewedBy      *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewedBy,omitempty"`
	ReviewNote      string              `bson:"review_note,omitempty" json:"reviewNote,omitempty"`
	SendAt          *time.Time          `bson:"send_at,omitempty" json:"sendAt,omitempty"`
	SentAt          *time.Time          `bson:"sent_at,omitempty" json:"sentAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
