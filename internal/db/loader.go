package db

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/velto/animatic/internal/compose"
	"github.com/velto/animatic/internal/models"
)

// URLResolver maps a storage path to an absolute public URL. The
// storage client implements it; composition requires every emitted
// reference to already be absolute.
type URLResolver interface {
	GetPublicURL(path string) string
}

// sceneRows holds one scene's child rows before URL resolution.
type sceneRows struct {
	scene          models.Scene
	utterances     []models.Utterance
	pageUtterances []models.Utterance
	balloons       []models.Balloon
	telops         []models.Telop
	cues           []models.AudioCue
}

// LoadBuildInput reads the full composition snapshot for a project:
// visible scenes with their utterances, balloons, telops and cues, the
// active background track, and every referenced asset resolved to an
// absolute URL. Child rows load concurrently per scene; this is the
// only I/O the composition path performs.
func (db *DB) LoadBuildInput(ctx context.Context, projectID uuid.UUID, resolver URLResolver) (*compose.Input, error) {
	project, err := db.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	scenes, err := db.GetProjectScenes(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var visible []models.Scene
	for _, s := range scenes {
		if !s.Hidden {
			visible = append(visible, s)
		}
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].SceneIndex < visible[j].SceneIndex })

	loaded := make([]sceneRows, len(visible))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, scene := range visible {
		i, scene := i, scene
		g.Go(func() error {
			rows := sceneRows{scene: scene}
			var err error

			if rows.utterances, err = db.GetSceneUtterances(gctx, scene.ID); err != nil {
				return fmt.Errorf("scene %d: %w", scene.ID, err)
			}
			if rows.balloons, err = db.GetSceneBalloons(gctx, scene.ID); err != nil {
				return fmt.Errorf("scene %d: %w", scene.ID, err)
			}
			if rows.telops, err = db.GetSceneTelops(gctx, scene.ID); err != nil {
				return fmt.Errorf("scene %d: %w", scene.ID, err)
			}
			if rows.cues, err = db.GetSceneCues(gctx, scene.ID); err != nil {
				return fmt.Errorf("scene %d: %w", scene.ID, err)
			}
			if scene.DisplayKind == models.DisplayKindPage && scene.PageAssetID != nil {
				if rows.pageUtterances, err = db.GetPageUtterances(gctx, *scene.PageAssetID); err != nil {
					return fmt.Errorf("scene %d: %w", scene.ID, err)
				}
			}

			loaded[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load scene content: %w", err)
	}

	track, err := db.GetActiveAudioTrack(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// One bulk lookup for every asset pointer in the snapshot.
	paths, err := db.GetAssetPaths(ctx, collectAssetIDs(loaded, track))
	if err != nil {
		return nil, err
	}

	resolveID := func(id uuid.UUID) string {
		path, ok := paths[id]
		if !ok {
			return ""
		}
		return resolver.GetPublicURL(path)
	}
	resolve := func(id *uuid.UUID) string {
		if id == nil {
			return ""
		}
		return resolveID(*id)
	}

	input := &compose.Input{Project: *project}
	for _, rows := range loaded {
		si := compose.SceneInput{
			Scene:    rows.scene,
			Telops:   rows.telops,
			ImageURL: resolve(rows.scene.ImageAssetID),
			PageURL:  resolve(rows.scene.PageAssetID),
			ClipURL:  resolve(rows.scene.ClipAssetID),
			VoiceURL: resolve(rows.scene.VoiceAssetID),
		}
		for _, u := range rows.utterances {
			si.Utterances = append(si.Utterances, compose.UtteranceInput{
				Utterance: u,
				AudioURL:  resolve(u.AudioAssetID),
			})
		}
		for _, u := range rows.pageUtterances {
			si.PageUtterances = append(si.PageUtterances, compose.UtteranceInput{
				Utterance: u,
				AudioURL:  resolve(u.AudioAssetID),
			})
		}
		for _, b := range rows.balloons {
			si.Balloons = append(si.Balloons, compose.BalloonInput{
				Balloon:       b,
				BakedImageURL: resolve(b.BakedImageAssetID),
			})
		}
		for _, c := range rows.cues {
			si.Cues = append(si.Cues, compose.CueInput{
				Cue: c,
				URL: resolveID(c.AssetID),
			})
		}
		input.Scenes = append(input.Scenes, si)
	}

	if track != nil {
		input.Track = &compose.TrackInput{
			Track: *track,
			URL:   resolveID(track.AssetID),
		}
	}

	return input, nil
}

func collectAssetIDs(loaded []sceneRows, track *models.AudioTrack) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	add := func(id *uuid.UUID) {
		if id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}

	for _, rows := range loaded {
		add(rows.scene.ImageAssetID)
		add(rows.scene.PageAssetID)
		add(rows.scene.ClipAssetID)
		add(rows.scene.VoiceAssetID)
		for _, u := range rows.utterances {
			add(u.AudioAssetID)
		}
		for _, u := range rows.pageUtterances {
			add(u.AudioAssetID)
		}
		for _, b := range rows.balloons {
			add(b.BakedImageAssetID)
		}
		for _, c := range rows.cues {
			id := c.AssetID
			add(&id)
		}
	}
	if track != nil {
		id := track.AssetID
		add(&id)
	}

	return ids
}
