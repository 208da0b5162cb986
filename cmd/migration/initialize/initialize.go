package initialize

import (
	"context"
	"encoding/json"

	"portal/internal/app"
	"portal/internal/logger"
	. "portal/internal/models"

	"gorm.io/datatypes"
)

func effectiveOnKinds(kinds ...string) datatypes.JSON {
	raw, _ := json.Marshal(kinds)
	return datatypes.JSON(raw)
}

// QualifyingLifeEventKinds is the catalog every exchange starts with.
func QualifyingLifeEventKinds() []QualifyingLifeEventKind {
	return []QualifyingLifeEventKind{
		{
			Title:              "Had a baby",
			Reason:             "birth",
			MarketKind:         MarketIndividual,
			EffectiveOnKinds:   effectiveOnKinds(SEPDateOfEvent, SEPFirstOfMonth),
			PostEventSepInDays: 60,
			IsActive:           true,
		},
		{
			Title:              "Adopted a child",
			Reason:             "adoption",
			MarketKind:         MarketIndividual,
			EffectiveOnKinds:   effectiveOnKinds(SEPDateOfEvent, SEPFirstOfMonth),
			PostEventSepInDays: 60,
			IsActive:           true,
		},
		{
			Title:              "Married",
			Reason:             "marriage",
			MarketKind:         MarketIndividual,
			EffectiveOnKinds:   effectiveOnKinds(SEPFirstOfNextMonth),
			PostEventSepInDays: 60,
			IsActive:           true,
		},
		{
			Title:              "Lost or will soon lose other health insurance",
			Reason:             "lost_access_to_mec",
			MarketKind:         MarketIndividual,
			EffectiveOnKinds:   effectiveOnKinds(SEPFirstOfNextMonth),
			PreEventSepInDays:  60,
			PostEventSepInDays: 60,
			IsActive:           true,
		},
		{
			Title:              "Moved to the district",
			Reason:             "relocate",
			MarketKind:         MarketIndividual,
			EffectiveOnKinds:   effectiveOnKinds(SEPFirstOfNextMonth),
			PostEventSepInDays: 60,
			IsActive:           true,
		},
		{
			Title:              "Exceptional circumstances",
			Reason:             "exceptional_circumstances",
			MarketKind:         MarketIndividual,
			EffectiveOnKinds:   effectiveOnKinds(SEPFixedFirstOfNextMonth, SEPExactDate),
			PostEventSepInDays: 30,
			IsActive:           true,
		},
		{
			Title:              "Had a baby",
			Reason:             "shop_birth",
			MarketKind:         MarketShop,
			EffectiveOnKinds:   effectiveOnKinds(SEPDateOfEvent),
			PostEventSepInDays: 30,
			IsActive:           true,
		},
		{
			Title:              "Married",
			Reason:             "shop_marriage",
			MarketKind:         MarketShop,
			EffectiveOnKinds:   effectiveOnKinds(SEPFirstOfNextMonth),
			PostEventSepInDays: 30,
			IsActive:           true,
		},
		{
			Title:              "Lost other coverage",
			Reason:             "shop_lost_coverage",
			MarketKind:         MarketShop,
			EffectiveOnKinds:   effectiveOnKinds(SEPFirstOfNextMonth),
			PostEventSepInDays: 30,
			IsActive:           true,
		},
	}
}

func InitializeTables(ctx context.Context, a *app.App, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	kinds := QualifyingLifeEventKinds()
	err := a.TransactionService.Execute(ctx, func(txCtx context.Context) error {
		return a.QualifyingLifeEventKindRepo.Upsert(txCtx, kinds)
	})
	if err != nil {
		return log.Err("failed to initialize qualifying life event kinds", err)
	}

	log.Info("Table initialization complete", "qualifyingLifeEventKinds", len(kinds))
	return nil
}
