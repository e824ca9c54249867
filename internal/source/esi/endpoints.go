package esi

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
)

const (
	EndpointWallet        = "wallet"
	EndpointSkills        = "skills"
	EndpointTitles        = "titles"
	EndpointImplants      = "implants"
	EndpointAssets        = "assets"
	EndpointOpportunities = "opportunities"
)

// Fetcher is the part of Client the descriptors need.
type Fetcher interface {
	Get(ctx context.Context, account domain.SyncAccount, path string) (endpoint.FetchResult, error)
}

// Descriptors returns the built-in endpoint set backed by f.
func Descriptors(f Fetcher) []endpoint.Descriptor {
	return []endpoint.Descriptor{
		{
			ID:              EndpointWallet,
			EntityType:      "wallet",
			Mode:            endpoint.Partial,
			DefaultInterval: 2 * time.Minute,
			MinInterval:     100 * time.Millisecond,
			ThrottleScope:   endpoint.ScopeAccount,
			Fetch:           get(f, "/characters/%d/wallet/"),
			Map:             mapWallet,
		},
		{
			ID:              EndpointSkills,
			EntityType:      "skill",
			Mode:            endpoint.FullEnumeration,
			DefaultInterval: 2 * time.Minute,
			Fetch:           get(f, "/characters/%d/skills/"),
			Map:             mapSkills,
		},
		{
			ID:              EndpointTitles,
			EntityType:      "title",
			Mode:            endpoint.FullEnumeration,
			DefaultInterval: time.Hour,
			Fetch:           get(f, "/characters/%d/titles/"),
			Map:             mapTitles,
		},
		{
			ID:              EndpointImplants,
			EntityType:      "implant",
			Mode:            endpoint.FullEnumeration,
			DefaultInterval: 2 * time.Minute,
			Fetch:           get(f, "/characters/%d/implants/"),
			Map:             mapImplants,
		},
		{
			ID:              EndpointAssets,
			EntityType:      "asset",
			Mode:            endpoint.FullEnumeration,
			DefaultInterval: time.Hour,
			MinInterval:     time.Second,
			Fetch:           get(f, "/characters/%d/assets/"),
			Map:             mapAssets,
		},
		{
			ID:              EndpointOpportunities,
			EntityType:      "opportunity",
			Mode:            endpoint.ImmutableInsert,
			DefaultInterval: time.Hour,
			Fetch:           get(f, "/characters/%d/opportunities/"),
			Map:             mapOpportunities,
		},
	}
}

func get(f Fetcher, pathFormat string) endpoint.FetchFunc {
	return func(ctx context.Context, account domain.SyncAccount) (endpoint.FetchResult, error) {
		return f.Get(ctx, account, fmt.Sprintf(pathFormat, account.ID))
	}
}

func mapWallet(payload []byte) ([]endpoint.Candidate, error) {
	var balance decimal.Decimal
	if err := json.Unmarshal(payload, &balance); err != nil {
		return nil, fmt.Errorf("decode wallet: %w", err)
	}
	return single(domain.SingletonKey, newWalletAttributes(balance))
}

func mapSkills(payload []byte) ([]endpoint.Candidate, error) {
	var skills Skills
	if err := json.Unmarshal(payload, &skills); err != nil {
		return nil, fmt.Errorf("decode skills: %w", err)
	}
	out := make([]endpoint.Candidate, 0, len(skills.Skills))
	for _, s := range skills.Skills {
		c, err := candidate(domain.KeyOf(s.SkillID), SkillAttributes{
			ActiveLevel:  s.ActiveSkillLevel,
			TrainedLevel: s.TrainedSkillLevel,
			Skillpoints:  s.SkillpointsInSkill,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func mapTitles(payload []byte) ([]endpoint.Candidate, error) {
	var titles []Title
	if err := json.Unmarshal(payload, &titles); err != nil {
		return nil, fmt.Errorf("decode titles: %w", err)
	}
	out := make([]endpoint.Candidate, 0, len(titles))
	for _, t := range titles {
		c, err := candidate(domain.KeyOf(t.TitleID), TitleAttributes{Name: t.Name})
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func mapImplants(payload []byte) ([]endpoint.Candidate, error) {
	var typeIDs []int32
	if err := json.Unmarshal(payload, &typeIDs); err != nil {
		return nil, fmt.Errorf("decode implants: %w", err)
	}
	out := make([]endpoint.Candidate, 0, len(typeIDs))
	for _, id := range typeIDs {
		c, err := candidate(domain.KeyOf(id), ImplantAttributes{TypeID: id})
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func mapAssets(payload []byte) ([]endpoint.Candidate, error) {
	var assets []Asset
	if err := json.Unmarshal(payload, &assets); err != nil {
		return nil, fmt.Errorf("decode assets: %w", err)
	}
	out := make([]endpoint.Candidate, 0, len(assets))
	for _, a := range assets {
		attrs := AssetAttributes{
			TypeID:       a.TypeID,
			LocationID:   a.LocationID,
			LocationFlag: a.LocationFlag,
			LocationType: a.LocationType,
			Quantity:     a.Quantity,
			IsSingleton:  a.IsSingleton,
		}
		if a.IsBlueprintCopy != nil {
			attrs.IsBlueprintCopy = *a.IsBlueprintCopy
		}
		c, err := candidate(domain.KeyOf(a.ItemID), attrs)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func mapOpportunities(payload []byte) ([]endpoint.Candidate, error) {
	var opportunities []Opportunity
	if err := json.Unmarshal(payload, &opportunities); err != nil {
		return nil, fmt.Errorf("decode opportunities: %w", err)
	}
	out := make([]endpoint.Candidate, 0, len(opportunities))
	for _, o := range opportunities {
		c, err := candidate(domain.KeyOf(o.TaskID), OpportunityAttributes{CompletedAt: o.CompletedAt.UTC()})
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func candidate(key domain.NaturalKey, v any) (endpoint.Candidate, error) {
	attrs, err := domain.NewAttributes(v)
	if err != nil {
		return endpoint.Candidate{}, err
	}
	return endpoint.Candidate{Key: key, Attributes: attrs}, nil
}

func single(key domain.NaturalKey, v any) ([]endpoint.Candidate, error) {
	c, err := candidate(key, v)
	if err != nil {
		return nil, err
	}
	return []endpoint.Candidate{c}, nil
}
