package episode

import (
	"errors"
	"fmt"
)

// DefaultHost serves the episode mp3 files.
const DefaultHost = "datashat.net"

// ErrInvalidIndex is returned for episode numbers outside 1..Count().
var ErrInvalidIndex = errors.New("invalid episode index")

var slugs = [...]string{
	"datassette",
	"sunjammer",
	"datassette",
	"com_truise",
	"abe_mangger",
	"gods_of_the_new_age",
	"tahlhoff_garten_and_untitled",
	"connectedness_locus",
	"datassette",
	"unity_gain_temple",
	"miles_tilmann",
	"forgotten_light",
	"matt_whitehead",
	"tahlhoff_garten_and_untitled",
	"dan_adeyemi",
	"silent_stelios",
	"graphplan",
	"konx_om_pax",
	"hivemind",
	"uberdog",
	"idol_eyes",
	"mindaugaszq",
	"panda_magic",
	"rites",
	"_nono_",
	"abstraction",
	"michael_hicks",
	"big_war",
	"luke_handsfree",
	"matt_kruse",
	"datassette",
	"chris_seddon",
	"uuav",
	"chukus",
	"nadim_kobeissi",
	"ea7_dmz",
	"lackluster",
	"j_s_aurelius",
	"kidding_kurrys",
	"mark_schneider",
	"sunjammer",
	"datassette",
	"hey_exit",
	"hukka",
	"ehohroma",
	"jo_johnson",
	"abe_mangger",
	"michael_hicks",
	"julien_mier",
	"misc.works",
	"m%C3%BCcha",
	"inchindown",
	"beb_welten",
	"hler",
	"20_jazz_funk_greats",
	"forest_drive_west",
	"hainbach",
	"olive_is_the_sun",
	"miunau",
	"tundra",
	"linnley",
	"our_grey_lives",
	"t-flx",
	"strepsil",
	"matt_whitehead",
	"conrad_clipper",
	"datassette",
	"no_data_available",
	"pearl_river_sound",
	"things_disappear",
}

// Entry is a single episode of the table.
type Entry struct {
	Index int
	Slug  string
}

// Directory resolves episode numbers against the static table.
// It is read-only and safe for concurrent use.
type Directory struct {
	host string
}

// NewDirectory returns a Directory that builds URLs for host.
// An empty host falls back to DefaultHost.
func NewDirectory(host string) *Directory {
	if host == "" {
		host = DefaultHost
	}
	return &Directory{host: host}
}

// Count returns the number of episodes.
func Count() int {
	return len(slugs)
}

// Slug returns the slug of the given episode.
func Slug(index int) (string, error) {
	if index < 1 || index > len(slugs) {
		return "", fmt.Errorf("%w: %d is not between 1 and %d", ErrInvalidIndex, index, len(slugs))
	}
	return slugs[index-1], nil
}

// Entries returns a copy of the whole table in episode order.
func Entries() []Entry {
	entries := make([]Entry, len(slugs))
	for i, slug := range slugs {
		entries[i] = Entry{Index: i + 1, Slug: slug}
	}
	return entries
}

// Host returns the host the directory builds URLs for.
func (d *Directory) Host() string {
	return d.host
}

// Resolve returns the download URL of an episode.
func (d *Directory) Resolve(index int) (string, error) {
	slug, err := Slug(index)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s/music_for_programming_%d-%s.mp3", d.host, index, slug), nil
}
