package models

// User roles on the platform.
const (
	RoleNGO    = "ngo"
	RoleLawyer = "lawyer"
	RoleDonor  = "donor"
	RoleAdmin  = "admin"
)

// Bounty statuses.
const (
	BountyStatusOpen       = "open"
	BountyStatusAssigned   = "assigned"
	BountyStatusInProgress = "in_progress"
	BountyStatusCompleted  = "completed"
	BountyStatusCancelled  = "cancelled"
)

// Notification events pushed over the websocket hub.
const (
	EventEscrowCreated     = "escrow.created"
	EventMilestoneReleased = "escrow.milestone_released"
	EventEscrowCompleted   = "escrow.completed"
	EventEscrowRefunded    = "escrow.refunded"
	EventBountyAssigned    = "bounty.assigned"
	EventAIAnalysisReady   = "ai.analysis_ready"
	EventAIMatchReady      = "ai.match_ready"
)
