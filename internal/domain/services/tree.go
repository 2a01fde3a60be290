package services

import (
	"strconv"
	"strings"

	"github.com/ersonp/kinship-core/internal/domain/entities"
)

// Synthetic id fragments of tree nodes.
const (
	selfIDPrefix    = "self-"
	partnerIDPrefix = "partner-"
	childIDPrefix   = "child-"

	// childIndexMark keys children by position when they have no numeroH.
	childIndexMark = "#"

	placeholderSuffix = "-placeholder"

	childNumeroHPrefix = "ENF"
	defaultChildPrenom = "Child"
)

// grandparentSlot describes one of the four grandparent placeholders.
type grandparentSlot struct {
	relation entities.Relation
	gender   entities.Gender
	label    string
}

var (
	paternalGrandparents = []grandparentSlot{
		{entities.RelationPaternalGrandfather, entities.GenderMale, "Paternal grandfather"},
		{entities.RelationPaternalGrandmother, entities.GenderFemale, "Paternal grandmother"},
	}
	maternalGrandparents = []grandparentSlot{
		{entities.RelationMaternalGrandfather, entities.GenderMale, "Maternal grandfather"},
		{entities.RelationMaternalGrandmother, entities.GenderFemale, "Maternal grandmother"},
	}
)

// treeBuilder accumulates nodes in emission order and resolves references by
// node id.
type treeBuilder struct {
	nodes []entities.TreeNode
	index map[string]int
}

func newTreeBuilder(capacity int) *treeBuilder {
	return &treeBuilder{
		nodes: make([]entities.TreeNode, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

func (b *treeBuilder) add(node entities.TreeNode) string {
	b.index[node.ID] = len(b.nodes)
	b.nodes = append(b.nodes, node)
	return node.ID
}

func (b *treeBuilder) node(id string) *entities.TreeNode {
	i, ok := b.index[id]
	if !ok {
		return nil
	}
	return &b.nodes[i]
}

// link records parentID as the parent of childID. A child keeps the first
// parent it is linked to.
func (b *treeBuilder) link(parentID, childID string) {
	parent, child := b.node(parentID), b.node(childID)
	if parent == nil || child == nil {
		return
	}
	parent.ChildRefIDs = append(parent.ChildRefIDs, childID)
	if child.ParentRefID == "" {
		child.ParentRefID = parentID
	}
}

// BuildFamilyTree projects a profile onto a generation-labelled node list.
//
// The anchor is always present and visible. Every other slot is either a
// populated node or an invisible placeholder listing the fields that are
// missing. Nodes are emitted in a fixed order: self, father, mother, paternal
// grandparents, maternal grandparents, partner, children. Ids depend only on
// the input, so identical profiles give identical trees.
func BuildFamilyTree(profile entities.PersonProfile) []entities.TreeNode {
	b := newTreeBuilder(8 + len(profile.Enfants))

	anchorGen := entities.AnchorGeneration(profile.Generation)
	// Offsets are taken from the declared label, which keeps its own G0
	// fallback when it cannot be read.
	baseGen := profile.Generation
	if strings.TrimSpace(baseGen) == "" {
		baseGen = entities.DefaultGeneration
	}
	parentGen := entities.PreviousGeneration(baseGen)
	grandparentGen := entities.PreviousGeneration(parentGen)
	childGen := entities.NextGeneration(baseGen)

	selfID := b.add(entities.TreeNode{
		ID:            selfIDPrefix + profile.NumeroH,
		NumeroH:       profile.NumeroH,
		Prenom:        profile.Prenom,
		NomFamille:    profile.NomFamille,
		Genre:         entities.ParseGender(profile.Genre),
		DateNaissance: profile.DateNaissance,
		DateDeces:     profile.DateDeces,
		Photo:         profile.Photo,
		Relation:      entities.RelationChild,
		Generation:    anchorGen,
		IsVisible:     true,
	})

	father := CheckCondition(FatherCondition, &profile)
	fatherID := b.add(parentNode(father, parentSlot{
		name:     "father",
		numeroH:  profile.NumeroHPere,
		prenom:   profile.PrenomPere,
		label:    "Father",
		gender:   entities.GenderMale,
		relation: entities.RelationFather,
	}, profile.NomFamille, parentGen))
	if father.Satisfied {
		b.link(fatherID, selfID)
	}

	mother := CheckCondition(MotherCondition, &profile)
	motherID := b.add(parentNode(mother, parentSlot{
		name:     "mother",
		numeroH:  profile.NumeroHMere,
		prenom:   profile.PrenomMere,
		label:    "Mother",
		gender:   entities.GenderFemale,
		relation: entities.RelationMother,
	}, profile.NomFamille, parentGen))
	if mother.Satisfied {
		b.link(motherID, selfID)
	}

	if father.Satisfied {
		for _, slot := range paternalGrandparents {
			id := b.add(grandparentPlaceholder(slot, profile.NomFamille, grandparentGen))
			b.link(id, fatherID)
		}
	}
	if mother.Satisfied {
		for _, slot := range maternalGrandparents {
			id := b.add(grandparentPlaceholder(slot, profile.NomFamille, grandparentGen))
			b.link(id, motherID)
		}
	}

	if CheckCondition(PartnerCondition, &profile).Satisfied {
		numeroH := strings.TrimSpace(profile.ConjointNumeroH)
		b.add(entities.TreeNode{
			ID:         partnerIDPrefix + numeroH,
			NumeroH:    numeroH,
			Prenom:     profile.ConjointPrenom,
			NomFamille: firstNonEmpty(profile.ConjointNomFamille, profile.NomFamille),
			Genre:      entities.ParseGender(profile.ConjointGenre),
			Relation:   entities.RelationPartner,
			Generation: anchorGen,
			IsVisible:  true,
		})
	}

	for i, child := range profile.Enfants {
		node := childNode(i, child, profile.NomFamille, childGen)
		// Repeated numeroH values still get distinct node ids.
		for b.node(node.ID) != nil {
			node.ID += childIndexMark + strconv.Itoa(i)
		}
		id := b.add(node)
		b.link(selfID, id)
	}

	return b.nodes
}

// parentSlot carries the per-parent constants of the father and mother slots.
type parentSlot struct {
	name     string
	numeroH  string
	prenom   string
	label    string
	gender   entities.Gender
	relation entities.Relation
}

func parentNode(check ConditionResult, slot parentSlot, familyName, generation string) entities.TreeNode {
	if !check.Satisfied {
		return entities.TreeNode{
			ID:                slot.name + placeholderSuffix,
			NumeroH:           entities.NotAvailable,
			Prenom:            slot.label,
			NomFamille:        familyName,
			Genre:             slot.gender,
			Relation:          slot.relation,
			Generation:        generation,
			IsVisible:         false,
			MissingConditions: check.MissingFields,
		}
	}
	numeroH := strings.TrimSpace(slot.numeroH)
	return entities.TreeNode{
		ID:         slot.name + "-" + numeroH,
		NumeroH:    numeroH,
		Prenom:     slot.prenom,
		NomFamille: familyName,
		Genre:      slot.gender,
		Relation:   slot.relation,
		Generation: generation,
		IsVisible:  true,
	}
}

func grandparentPlaceholder(slot grandparentSlot, familyName, generation string) entities.TreeNode {
	return entities.TreeNode{
		ID:                string(slot.relation) + placeholderSuffix,
		NumeroH:           entities.NotAvailable,
		Prenom:            slot.label,
		NomFamille:        familyName,
		Genre:             slot.gender,
		Relation:          slot.relation,
		Generation:        generation,
		IsVisible:         false,
		MissingConditions: []string{slot.label + " information not available"},
	}
}

func childNode(index int, child entities.DeclaredChild, familyName, generation string) entities.TreeNode {
	numeroH := strings.TrimSpace(child.NumeroH)
	key := numeroH
	if key == "" {
		key = childIndexMark + strconv.Itoa(index)
		numeroH = childNumeroHPrefix + strconv.Itoa(index)
	}

	gender := entities.ParseGender(child.Genre)
	// Children carry the sibling tags, as profile screens expect.
	relation := entities.RelationSister
	if gender == entities.GenderMale {
		relation = entities.RelationBrother
	}

	return entities.TreeNode{
		ID:            childIDPrefix + key,
		NumeroH:       numeroH,
		Prenom:        firstNonEmpty(child.Prenom, defaultChildPrenom),
		NomFamille:    firstNonEmpty(child.NomFamille, familyName),
		Genre:         gender,
		DateNaissance: child.DateNaissance,
		Relation:      relation,
		Generation:    generation,
		IsVisible:     true,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
