package semcache

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kr0ner/multistage-assist/pkg/assist/types"
	"github.com/kr0ner/multistage-assist/pkg/clients/embeddings"
	"github.com/kr0ner/multistage-assist/pkg/domainconfig"
	"github.com/kr0ner/multistage-assist/pkg/german"
	"github.com/kr0ner/multistage-assist/pkg/host"
)

// renderedAnchor is one rendered template awaiting embedding.
type renderedAnchor struct {
	text  string
	entry types.CacheEntry
}

// BuildAnchors renders every applicable anchor template (pkg/domainconfig's
// AnchorTemplates) against the current registry snapshot and embeds each
// rendering, producing the cold-start entry set for [Cache.Seed].
//
// Embedding calls fan out concurrently, bounded by concurrency — the one
// place this package uses goroutines, since everything else runs on the
// single-threaded per-utterance path.
func BuildAnchors(ctx context.Context, registry host.Registry, embedder embeddings.Provider, concurrency int) ([]types.CacheEntry, error) {
	areas, err := registry.Areas(ctx)
	if err != nil {
		return nil, fmt.Errorf("semcache: anchors: load areas: %w", err)
	}
	floors, err := registry.Floors(ctx)
	if err != nil {
		return nil, fmt.Errorf("semcache: anchors: load floors: %w", err)
	}
	entities, err := registry.Entities(ctx)
	if err != nil {
		return nil, fmt.Errorf("semcache: anchors: load entities: %w", err)
	}

	areaByName := make(map[string]host.Area, len(areas))
	for _, a := range areas {
		areaByName[a.Name] = a
	}
	floorByName := make(map[string]host.Floor, len(floors))
	for _, f := range floors {
		floorByName[f.Name] = f
	}

	byDomainArea := map[string]map[string][]host.Entity{}
	byDomainFloor := map[string]map[string][]host.Entity{}
	byDomain := map[string][]host.Entity{}
	nameCount := map[string]int{}
	for _, e := range entities {
		byDomain[e.Domain] = append(byDomain[e.Domain], e)
		nameCount[e.Name]++

		if e.Area != "" {
			if byDomainArea[e.Domain] == nil {
				byDomainArea[e.Domain] = map[string][]host.Entity{}
			}
			byDomainArea[e.Domain][e.Area] = append(byDomainArea[e.Domain][e.Area], e)
		}

		floorName := e.Floor
		if floorName == "" {
			if a, ok := areaByName[e.Area]; ok {
				floorName = a.Floor
			}
		}
		if floorName != "" {
			if byDomainFloor[e.Domain] == nil {
				byDomainFloor[e.Domain] = map[string][]host.Entity{}
			}
			byDomainFloor[e.Domain][floorName] = append(byDomainFloor[e.Domain][floorName], e)
		}
	}

	var rendered []renderedAnchor
	for domainName, templates := range domainconfig.AnchorTemplates {
		domainCfg, ok := domainconfig.Get(domainName)
		if !ok {
			continue
		}
		for _, tmpl := range templates {
			switch tmpl.Tier {
			case domainconfig.TierArea:
				for areaName, ents := range byDomainArea[domainName] {
					if requiresDimmable(tmpl) {
						ents = filterDimmable(ents)
					}
					if len(ents) == 0 {
						continue
					}
					rendered = append(rendered, renderAreaAnchor(tmpl, domainCfg, areaName, ents))
				}
			case domainconfig.TierFloor:
				for floorName, ents := range byDomainFloor[domainName] {
					rendered = append(rendered, renderFloorAnchor(tmpl, domainCfg, floorName, ents))
				}
			case domainconfig.TierEntity:
				for _, e := range byDomain[domainName] {
					if e.Name == e.Area {
						continue
					}
					if requiresDimmable(tmpl) && !isDimmable(e) {
						continue
					}
					rendered = append(rendered, renderEntityAnchor(tmpl, e))
				}
			case domainconfig.TierGlobal:
				if len(byDomain[domainName]) == 0 {
					continue
				}
				rendered = append(rendered, renderGlobalAnchor(tmpl, byDomain[domainName]))
			}
		}
	}

	// Unique-entity global anchors: a name that appears exactly once across
	// the installation and does not collide with an area or floor name gets
	// its entity-scoped templates rendered again without an area, so a
	// one-of-a-kind device resolves even when the caller omits the room.
	for _, e := range entities {
		if nameCount[e.Name] != 1 {
			continue
		}
		if _, collides := areaByName[e.Name]; collides {
			continue
		}
		if _, collides := floorByName[e.Name]; collides {
			continue
		}
		for _, tmpl := range domainconfig.AnchorTemplates[e.Domain] {
			if tmpl.Tier != domainconfig.TierEntity {
				continue
			}
			if requiresDimmable(tmpl) && !isDimmable(e) {
				continue
			}
			rendered = append(rendered, renderEntityAnchor(tmpl, e))
		}
	}

	// Dedup by rendered text: different phrasings of the same intent are
	// all kept, but the same text is never embedded twice.
	seen := make(map[string]struct{}, len(rendered))
	deduped := rendered[:0]
	for _, r := range rendered {
		if _, ok := seen[r.text]; ok {
			continue
		}
		seen[r.text] = struct{}{}
		deduped = append(deduped, r)
	}
	rendered = deduped

	if concurrency <= 0 {
		concurrency = 4
	}
	entriesOut := make([]types.CacheEntry, len(rendered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, r := range rendered {
		i, r := i, r
		g.Go(func() error {
			normalized := german.NormalizeForCache(r.text)
			emb, embErr := embedder.Embed(gctx, normalized)
			if embErr != nil {
				return fmt.Errorf("semcache: anchors: embed %q: %w", r.text, embErr)
			}
			entry := r.entry
			entry.Text = normalized
			entry.Embedding = emb
			entry.Generated = true
			entry.Verified = true
			entriesOut[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entriesOut, nil
}

// requiresDimmable reports whether tmpl sets a brightness percentage,
// meaning it must only be rendered against dimmable lights.
func requiresDimmable(tmpl domainconfig.AnchorTemplate) bool {
	if tmpl.Intent != "HassLightSet" {
		return false
	}
	_, ok := tmpl.ExtraSlots["brightness_pct"]
	return ok
}

// isDimmable reports whether e supports more than on/off color control.
// Entities with no reported color modes are treated as dimmable rather
// than silently dropped.
func isDimmable(e host.Entity) bool {
	modes, ok := e.Attributes["supported_color_modes"]
	if !ok {
		return true
	}
	list, ok := modes.([]string)
	if !ok || len(list) == 0 {
		return true
	}
	return !(len(list) == 1 && list[0] == "onoff")
}

func filterDimmable(ents []host.Entity) []host.Entity {
	out := ents[:0:0]
	for _, e := range ents {
		if isDimmable(e) {
			out = append(out, e)
		}
	}
	return out
}

func deviceWord(cfg domainconfig.Domain, count int) string {
	if count > 1 {
		return "die " + cfg.NameDEPlural
	}
	return cfg.DeviceWordDE
}

func entityIDs(ents []host.Entity) []string {
	ids := make([]string, len(ents))
	for i, e := range ents {
		ids[i] = e.ID
	}
	return ids
}

func domainOf(ents []host.Entity) string {
	if len(ents) == 0 {
		return ""
	}
	return ents[0].Domain
}

func cloneSlots(slots map[string]any) map[string]any {
	if slots == nil {
		return nil
	}
	out := make(map[string]any, len(slots))
	for k, v := range slots {
		out[k] = v
	}
	return out
}

func renderAreaAnchor(tmpl domainconfig.AnchorTemplate, cfg domainconfig.Domain, area string, ents []host.Entity) renderedAnchor {
	text := strings.NewReplacer(
		"{device}", deviceWord(cfg, len(ents)),
		"{area}", area,
	).Replace(tmpl.Text)
	return renderedAnchor{
		text: text,
		entry: types.CacheEntry{
			Domain:    domainOf(ents),
			Intent:    tmpl.Intent,
			EntityIDs: entityIDs(ents),
			Slots:     cloneSlots(tmpl.ExtraSlots),
		},
	}
}

func renderFloorAnchor(tmpl domainconfig.AnchorTemplate, cfg domainconfig.Domain, floor string, ents []host.Entity) renderedAnchor {
	text := strings.NewReplacer(
		"{device}", deviceWord(cfg, len(ents)),
		"{floor}", floor,
	).Replace(tmpl.Text)
	return renderedAnchor{
		text: text,
		entry: types.CacheEntry{
			Domain:    domainOf(ents),
			Intent:    tmpl.Intent,
			EntityIDs: entityIDs(ents),
			Slots:     cloneSlots(tmpl.ExtraSlots),
		},
	}
}

func renderEntityAnchor(tmpl domainconfig.AnchorTemplate, e host.Entity) renderedAnchor {
	text := strings.NewReplacer(
		"{name}", e.Name,
		"{area}", e.Area,
	).Replace(tmpl.Text)
	return renderedAnchor{
		text: text,
		entry: types.CacheEntry{
			Domain:    e.Domain,
			Intent:    tmpl.Intent,
			EntityIDs: []string{e.ID},
			Slots:     cloneSlots(tmpl.ExtraSlots),
		},
	}
}

func renderGlobalAnchor(tmpl domainconfig.AnchorTemplate, ents []host.Entity) renderedAnchor {
	return renderedAnchor{
		text: tmpl.Text,
		entry: types.CacheEntry{
			Domain:    domainOf(ents),
			Intent:    tmpl.Intent,
			EntityIDs: entityIDs(ents),
			Slots:     cloneSlots(tmpl.ExtraSlots),
		},
	}
}
