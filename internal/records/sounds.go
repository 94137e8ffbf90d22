// ABOUTME: Soundboard entries uploaded per guild
// ABOUTME: The file path is optional until the download finishes
package records

import (
	"crypto/sha256"
	"fmt"
	"regexp"

	"github.com/harper/seatbot/internal/table"
)

// Sounds is the soundboard table.
var Sounds = Definition{Name: "sounds", PrimaryKeys: []string{"guild_id", "name"}}

var soundName = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// Sound is a named soundboard clip.
type Sound struct {
	GuildID    int64   `json:"guild_id"`
	Name       string  `json:"name"`
	UploaderID int64   `json:"uploader_id"`
	Filepath   *string `json:"filepath,omitempty"`
	Checksum   []byte  `json:"checksum,omitempty"`
}

// NewSound creates a sound without a file yet.
func NewSound(guildID int64, name string, uploaderID int64) (*Sound, error) {
	if !soundName.MatchString(name) {
		return nil, fmt.Errorf("sound name %q must be 1-32 lowercase letters, digits, '-' or '_'", name)
	}
	return &Sound{GuildID: guildID, Name: name, UploaderID: uploaderID}, nil
}

// Attach records where the clip was saved and the checksum of its contents.
func (s *Sound) Attach(path string, contents []byte) {
	sum := sha256.Sum256(contents)
	s.Filepath = &path
	s.Checksum = sum[:]
}

// Ready reports whether the clip has a file to play.
func (s *Sound) Ready() bool {
	return s.Filepath != nil
}

// SoundCodec stores Sound rows.
type SoundCodec struct{}

func (SoundCodec) Schema() table.Schema {
	return table.Schema{
		table.Column("guild_id", table.Int),
		table.Column("name", table.Text),
		table.Column("uploader_id", table.Int),
		table.NullableColumn("filepath", table.Text),
		table.NullableColumn("checksum", table.Blob),
	}
}

func (SoundCodec) Encode(s Sound) table.Row {
	var path, checksum any
	if s.Filepath != nil {
		path = *s.Filepath
	}
	if s.Checksum != nil {
		checksum = s.Checksum
	}
	return table.Row{s.GuildID, s.Name, s.UploaderID, path, checksum}
}

func (SoundCodec) Decode(row table.Row) (Sound, error) {
	if err := checkArity(Sounds.Name, row, 5); err != nil {
		return Sound{}, err
	}
	return Sound{
		GuildID:    row.Int(0),
		Name:       row.Text(1),
		UploaderID: row.Int(2),
		Filepath:   row.OptionalText(3),
		Checksum:   row.Blob(4),
	}, nil
}
