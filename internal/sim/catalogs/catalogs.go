package catalogs

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

type BlockClass int

const (
	ClassNone BlockClass = iota
	ClassBed
	ClassWorkstation
)

func (c BlockClass) String() string {
	switch c {
	case ClassBed:
		return "BED"
	case ClassWorkstation:
		return "WORKSTATION"
	default:
		return "NONE"
	}
}

const (
	DefaultParticle = "HAPPY_VILLAGER"
	DefaultSound    = "ENTITY_VILLAGER_YES"
)

type Catalogs struct {
	Blocks    BlockCatalog
	Particles NameCatalog
	Sounds    NameCatalog
	Digest    string
}

type BlockCatalog struct {
	Beds         map[string]bool
	Workstations map[string]bool
}

// NameCatalog is a closed set of upper-case effect names with a fallback.
type NameCatalog struct {
	Names    map[string]bool
	Fallback string
}

var bedColors = []string{
	"WHITE", "ORANGE", "MAGENTA", "LIGHT_BLUE", "YELLOW", "LIME", "PINK", "GRAY",
	"LIGHT_GRAY", "CYAN", "PURPLE", "BLUE", "BROWN", "GREEN", "RED", "BLACK",
}

var workstations = []string{
	"COMPOSTER", "LECTERN", "BLAST_FURNACE", "SMOKER", "SMITHING_TABLE", "GRINDSTONE",
	"CARTOGRAPHY_TABLE", "BREWING_STAND", "BARREL", "FLETCHING_TABLE", "CAULDRON",
	"STONECUTTER", "LOOM",
}

var particles = []string{
	"HAPPY_VILLAGER", "ANGRY_VILLAGER", "ENCHANT", "END_ROD", "FLAME", "SOUL_FIRE_FLAME",
	"HEART", "NOTE", "PORTAL", "CLOUD", "CRIT", "ENCHANTED_HIT", "WITCH", "GLOW",
	"ELECTRIC_SPARK", "WAX_ON", "WAX_OFF", "TOTEM_OF_UNDYING", "COMPOSTER", "DUST",
}

var sounds = []string{
	"ENTITY_VILLAGER_YES", "ENTITY_VILLAGER_NO", "ENTITY_VILLAGER_AMBIENT",
	"ENTITY_VILLAGER_CELEBRATE", "ENTITY_VILLAGER_TRADE", "ENTITY_VILLAGER_WORK_CARTOGRAPHER",
	"BLOCK_BEACON_ACTIVATE", "BLOCK_BEACON_POWER_SELECT", "BLOCK_NOTE_BLOCK_CHIME",
	"BLOCK_NOTE_BLOCK_BELL", "BLOCK_AMETHYST_BLOCK_CHIME", "ENTITY_EXPERIENCE_ORB_PICKUP",
	"ENTITY_PLAYER_LEVELUP", "UI_BUTTON_CLICK",
}

// Default returns the built-in block, particle and sound catalogs.
func Default() *Catalogs {
	c := &Catalogs{
		Blocks: BlockCatalog{
			Beds:         map[string]bool{},
			Workstations: map[string]bool{},
		},
		Particles: newNameCatalog(particles, DefaultParticle),
		Sounds:    newNameCatalog(sounds, DefaultSound),
	}
	for _, color := range bedColors {
		c.Blocks.Beds[color+"_BED"] = true
	}
	for _, id := range workstations {
		c.Blocks.Workstations[id] = true
	}
	c.Digest = c.digest()
	return c
}

func newNameCatalog(names []string, fallback string) NameCatalog {
	nc := NameCatalog{Names: map[string]bool{}, Fallback: fallback}
	for _, n := range names {
		nc.Names[n] = true
	}
	return nc
}

// Classify reports whether blockType is a bed, a workstation, or neither.
func (b BlockCatalog) Classify(blockType string) BlockClass {
	id := strings.ToUpper(strings.TrimSpace(blockType))
	switch {
	case b.Beds[id]:
		return ClassBed
	case b.Workstations[id]:
		return ClassWorkstation
	default:
		return ClassNone
	}
}

// Bindable reports whether the block can hold either anchor.
func (b BlockCatalog) Bindable(blockType string) bool {
	return b.Classify(blockType) != ClassNone
}

// Resolve normalises name and returns it when known, otherwise the fallback.
func (n NameCatalog) Resolve(name string) (string, bool) {
	id := strings.ToUpper(strings.TrimSpace(name))
	if n.Names[id] {
		return id, true
	}
	return n.Fallback, false
}

func (c *Catalogs) digest() string {
	type dump struct {
		Beds         []string `json:"beds"`
		Workstations []string `json:"workstations"`
		Particles    []string `json:"particles"`
		Sounds       []string `json:"sounds"`
	}
	d := dump{
		Beds:         sortedKeys(c.Blocks.Beds),
		Workstations: sortedKeys(c.Blocks.Workstations),
		Particles:    sortedKeys(c.Particles.Names),
		Sounds:       sortedKeys(c.Sounds.Names),
	}
	b, _ := json.Marshal(d)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
