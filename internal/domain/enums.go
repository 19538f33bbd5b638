package domain

// DecisionStatus is the lifecycle state shared by applications and change requests.
type DecisionStatus string

const (
	DecisionPending  DecisionStatus = "PENDING"
	DecisionApproved DecisionStatus = "APPROVED"
	DecisionRejected DecisionStatus = "REJECTED"
)

func (s DecisionStatus) String() string { return string(s) }

func (s DecisionStatus) IsValid() bool {
	switch s {
	case DecisionPending, DecisionApproved, DecisionRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s DecisionStatus) IsTerminal() bool {
	return s == DecisionApproved || s == DecisionRejected
}

// CanTransitionTo allows only Pending -> Approved and Pending -> Rejected.
func (s DecisionStatus) CanTransitionTo(next DecisionStatus) bool {
	return s == DecisionPending && next.IsTerminal()
}

// GuideStatus represents whether a guide profile can take assignments.
type GuideStatus string

const (
	GuideStatusActive    GuideStatus = "ACTIVE"
	GuideStatusSuspended GuideStatus = "SUSPENDED"
)

func (s GuideStatus) String() string { return string(s) }

func (s GuideStatus) IsValid() bool {
	switch s {
	case GuideStatusActive, GuideStatusSuspended:
		return true
	}
	return false
}

// ProfileField is the closed set of profile attributes a guide may ask to change.
type ProfileField string

const (
	ProfileFieldLanguage    ProfileField = "LANGUAGE"
	ProfileFieldServiceArea ProfileField = "SERVICE_AREA"
	ProfileFieldPhone       ProfileField = "PHONE"
	ProfileFieldEmail       ProfileField = "EMAIL"
)

func (f ProfileField) String() string { return string(f) }

func (f ProfileField) IsValid() bool {
	switch f {
	case ProfileFieldLanguage, ProfileFieldServiceArea, ProfileFieldPhone, ProfileFieldEmail:
		return true
	}
	return false
}

// IsSet reports whether the field holds an unordered set of values.
func (f ProfileField) IsSet() bool {
	return f == ProfileFieldLanguage || f == ProfileFieldServiceArea
}

// RequiresEvidence reports whether approval needs a supporting document.
func (f ProfileField) RequiresEvidence() bool {
	return f == ProfileFieldLanguage
}

// SubjectType identifies the kind of entity an audit entry is about.
type SubjectType string

const (
	SubjectApplication   SubjectType = "APPLICATION"
	SubjectGuide         SubjectType = "GUIDE"
	SubjectChangeRequest SubjectType = "CHANGE_REQUEST"
	SubjectPackage       SubjectType = "PACKAGE"
	SubjectBusyIndex     SubjectType = "BUSY_INDEX"
)

func (t SubjectType) String() string { return string(t) }

func (t SubjectType) IsValid() bool {
	switch t {
	case SubjectApplication, SubjectGuide, SubjectChangeRequest, SubjectPackage, SubjectBusyIndex:
		return true
	}
	return false
}

// AuditAction represents the kind of decision recorded in the audit log.
type AuditAction string

const (
	AuditActionSubmitted        AuditAction = "SUBMITTED"
	AuditActionApproved         AuditAction = "APPROVED"
	AuditActionRejected         AuditAction = "REJECTED"
	AuditActionAutoRejected     AuditAction = "AUTO_REJECTED"
	AuditActionEvidenceAttached AuditAction = "EVIDENCE_ATTACHED"
	AuditActionSuspended        AuditAction = "SUSPENDED"
	AuditActionActivated        AuditAction = "ACTIVATED"
	AuditActionAssigned         AuditAction = "ASSIGNED"
	AuditActionUnassigned       AuditAction = "UNASSIGNED"
	AuditActionIndexRebuilt     AuditAction = "INDEX_REBUILT"
)

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	switch a {
	case AuditActionSubmitted, AuditActionApproved, AuditActionRejected, AuditActionAutoRejected,
		AuditActionEvidenceAttached, AuditActionSuspended, AuditActionActivated,
		AuditActionAssigned, AuditActionUnassigned, AuditActionIndexRebuilt:
		return true
	}
	return false
}

// IneligibilityReason names one failed eligibility constraint.
type IneligibilityReason string

const (
	ReasonSuspended        IneligibilityReason = "SUSPENDED"
	ReasonLanguageMismatch IneligibilityReason = "LANGUAGE_MISMATCH"
	ReasonAreaMismatch     IneligibilityReason = "AREA_MISMATCH"
	ReasonDateConflict     IneligibilityReason = "DATE_CONFLICT"
)

func (r IneligibilityReason) String() string { return string(r) }

// UserRole represents the authorization level carried by an access token.
type UserRole string

const (
	UserRoleGuide UserRole = "guide"
	UserRoleAdmin UserRole = "admin"
)

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleGuide, UserRoleAdmin:
		return true
	}
	return false
}

func (r UserRole) IsAdmin() bool {
	return r == UserRoleAdmin
}
