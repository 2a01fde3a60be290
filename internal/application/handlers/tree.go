package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
	"github.com/ersonp/kinship-core/internal/domain/services"
	"github.com/ersonp/kinship-core/internal/infrastructure/parsers"
)

// TreeHandler builds family trees and completion advice for a person.
type TreeHandler struct {
	profiles *services.ProfileService
}

// NewTreeHandler creates a new TreeHandler.
func NewTreeHandler(profiles *services.ProfileService) *TreeHandler {
	return &TreeHandler{
		profiles: profiles,
	}
}

// TreeRequest selects the profile a tree is built from: a profile document
// when ProfilePath is set, otherwise the stored person NumeroH merged with
// their active links.
type TreeRequest struct {
	NumeroH       string
	ProfilePath   string
	IncludeHidden bool // keep invisible placeholder nodes
}

// TreeResult contains a built tree and the advice for the same profile.
type TreeResult struct {
	Profile         entities.PersonProfile `json:"profile"`
	Nodes           []entities.TreeNode    `json:"nodes"`
	Recommendations []string               `json:"recommendations"`
}

// HandleBuild loads the profile and projects it into tree nodes.
func (h *TreeHandler) HandleBuild(ctx context.Context, req TreeRequest) (*TreeResult, error) {
	profile, err := h.loadProfile(ctx, req)
	if err != nil {
		return nil, err
	}

	nodes := services.BuildFamilyTree(profile)
	if !req.IncludeHidden {
		nodes = VisibleNodes(nodes)
	}

	return &TreeResult{
		Profile:         profile,
		Nodes:           nodes,
		Recommendations: services.CompletionRecommendations(profile),
	}, nil
}

// HandleAdvise returns the completion recommendations for a profile.
func (h *TreeHandler) HandleAdvise(ctx context.Context, req TreeRequest) ([]string, error) {
	profile, err := h.loadProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	return services.CompletionRecommendations(profile), nil
}

func (h *TreeHandler) loadProfile(ctx context.Context, req TreeRequest) (entities.PersonProfile, error) {
	if req.ProfilePath != "" {
		profile, err := parsers.ProfileFromFile(req.ProfilePath)
		if err != nil {
			return entities.PersonProfile{}, fmt.Errorf("reading profile: %w", err)
		}
		return profile, nil
	}

	if strings.TrimSpace(req.NumeroH) == "" {
		return entities.PersonProfile{}, errors.New("a numeroH or a profile file is required")
	}
	if h.profiles == nil {
		return entities.PersonProfile{}, errors.New("no person directory available")
	}

	profile, err := h.profiles.Load(ctx, req.NumeroH)
	if err != nil {
		return entities.PersonProfile{}, fmt.Errorf("loading profile: %w", err)
	}
	return profile, nil
}

// VisibleNodes drops invisible placeholder nodes and the references that
// pointed at them. The input is left untouched.
func VisibleNodes(nodes []entities.TreeNode) []entities.TreeNode {
	kept := make(map[string]bool, len(nodes))
	for i := range nodes {
		if nodes[i].IsVisible {
			kept[nodes[i].ID] = true
		}
	}

	visible := make([]entities.TreeNode, 0, len(kept))
	for i := range nodes {
		if !nodes[i].IsVisible {
			continue
		}
		node := nodes[i]
		if !kept[node.ParentRefID] {
			node.ParentRefID = ""
		}
		var children []string
		for _, id := range node.ChildRefIDs {
			if kept[id] {
				children = append(children, id)
			}
		}
		node.ChildRefIDs = children
		visible = append(visible, node)
	}
	return visible
}
