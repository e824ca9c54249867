package esi

import (
	"time"

	"github.com/shopspring/decimal"
)

type Skills struct {
	Skills        []Skill `json:"skills"`
	TotalSP       int64   `json:"total_sp"`
	UnallocatedSP int64   `json:"unallocated_sp"`
}

type Skill struct {
	SkillID            int32 `json:"skill_id"`
	ActiveSkillLevel   int32 `json:"active_skill_level"`
	TrainedSkillLevel  int32 `json:"trained_skill_level"`
	SkillpointsInSkill int64 `json:"skillpoints_in_skill"`
}

type Title struct {
	TitleID int32  `json:"title_id"`
	Name    string `json:"name"`
}

type Asset struct {
	ItemID          int64  `json:"item_id"`
	TypeID          int32  `json:"type_id"`
	LocationID      int64  `json:"location_id"`
	LocationFlag    string `json:"location_flag"`
	LocationType    string `json:"location_type"`
	Quantity        int32  `json:"quantity"`
	IsSingleton     bool   `json:"is_singleton"`
	IsBlueprintCopy *bool  `json:"is_blueprint_copy,omitempty"`
}

type Opportunity struct {
	TaskID      int32     `json:"task_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// WalletAttributes stores the balance with a fixed scale so equal balances
// always encode to the same text.
type WalletAttributes struct {
	Balance string `json:"balance"`
}

func newWalletAttributes(balance decimal.Decimal) WalletAttributes {
	return WalletAttributes{Balance: balance.StringFixed(2)}
}

type SkillAttributes struct {
	ActiveLevel  int32 `json:"active_level"`
	TrainedLevel int32 `json:"trained_level"`
	Skillpoints  int64 `json:"skillpoints"`
}

type TitleAttributes struct {
	Name string `json:"name"`
}

type ImplantAttributes struct {
	TypeID int32 `json:"type_id"`
}

type AssetAttributes struct {
	TypeID          int32  `json:"type_id"`
	LocationID      int64  `json:"location_id"`
	LocationFlag    string `json:"location_flag"`
	LocationType    string `json:"location_type"`
	Quantity        int32  `json:"quantity"`
	IsSingleton     bool   `json:"is_singleton"`
	IsBlueprintCopy bool   `json:"is_blueprint_copy"`
}

type OpportunityAttributes struct {
	CompletedAt time.Time `json:"completed_at"`
}
