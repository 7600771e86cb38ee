package cmd

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jfmyers9/scloud/internal/outbox"
	"github.com/jfmyers9/scloud/pkg/soundcloud"
	"github.com/mattn/go-runewidth"
)

const titleWidth = 48

var (
	successMark = color.GreenString("✓")
	warnMark    = color.YellowString("!")
	bold        = color.New(color.Bold)
	label       = color.New(color.FgCyan)
)

// fit pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
func fit(text string, width int) string {
	if width <= 0 {
		return text
	}

	const ellipsis = "..."
	current := runewidth.StringWidth(text)

	switch {
	case current > width:
		if width <= len(ellipsis) {
			return runewidth.Truncate(ellipsis, width, "")
		}
		// Truncate stops before wide runes that would overflow
		truncated := runewidth.Truncate(text, width-len(ellipsis), "") + ellipsis
		return runewidth.FillRight(truncated, width)
	case current < width:
		return runewidth.FillRight(text, width)
	}
	return text
}

// clip truncates text to width display columns without padding
func clip(text string, width int) string {
	return runewidth.Truncate(text, width, "...")
}

// formatDuration renders d as m:ss, or h:mm:ss past an hour
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

func urlString(u *url.URL) string {
	if u == nil {
		return "-"
	}
	return u.String()
}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.SetStyle(table.StyleRounded)
	return t
}

func printTracks(w io.Writer, tracks []soundcloud.Track) {
	if len(tracks) == 0 {
		fmt.Fprintln(w, "No tracks found.")
		return
	}

	t := newTable(w, table.Row{"ID", "Title", "Artist", "Length", "Plays", "Genre"})
	for _, track := range tracks {
		t.AppendRow(table.Row{
			color.HiBlackString(strconv.Itoa(track.ID)),
			bold.Sprint(clip(track.Title, titleWidth)),
			track.User.Username,
			formatDuration(track.Duration),
			track.PlaybackCount,
			track.Genre,
		})
	}
	t.Render()
}

func printTrack(w io.Writer, track soundcloud.Track) {
	fmt.Fprintf(w, "%s\n", bold.Sprint(track.Title))
	fmt.Fprintf(w, "%s %s\n", label.Sprint("Artist:  "), track.User.Username)
	fmt.Fprintf(w, "%s %s\n", label.Sprint("Length:  "), formatDuration(track.Duration))
	fmt.Fprintf(w, "%s %s\n", label.Sprint("Created: "), formatDate(track.CreatedAt))
	if track.Genre != "" {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("Genre:   "), track.Genre)
	}
	if len(track.Tags) > 0 {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("Tags:    "), strings.Join(track.Tags, ", "))
	}
	fmt.Fprintf(w, "%s %d plays, %d favorites, %d comments\n", label.Sprint("Stats:   "),
		track.PlaybackCount, track.FavoritingsCount, track.CommentCount)
	fmt.Fprintf(w, "%s %s\n", label.Sprint("Link:    "), urlString(track.PermalinkURL))
	if track.Streamable {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("Stream:  "), urlString(track.StreamURL))
	}
}

func printUsers(w io.Writer, users []soundcloud.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}

	t := newTable(w, table.Row{"ID", "Username", "Name", "Tracks", "Followers"})
	for _, u := range users {
		t.AppendRow(table.Row{
			color.HiBlackString(strconv.Itoa(u.ID)),
			bold.Sprint(u.Username),
			clip(u.FullName, 32),
			u.TrackCount,
			u.FollowersCount,
		})
	}
	t.Render()
}

func printUser(w io.Writer, u soundcloud.User) {
	fmt.Fprintf(w, "%s (%d)\n", bold.Sprint(u.Username), u.ID)
	if u.FullName != "" {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("Name:      "), u.FullName)
	}
	if place := strings.Trim(u.City+", "+u.Country, ", "); place != "" {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("Location:  "), place)
	}
	fmt.Fprintf(w, "%s %d tracks, %d playlists\n", label.Sprint("Uploads:   "), u.TrackCount, u.PlaylistCount)
	fmt.Fprintf(w, "%s %d followers, %d following\n", label.Sprint("Network:   "), u.FollowersCount, u.FollowingCount)
	fmt.Fprintf(w, "%s %s\n", label.Sprint("Link:      "), urlString(u.PermalinkURL))
}

func printPlaylists(w io.Writer, playlists []soundcloud.Playlist) {
	if len(playlists) == 0 {
		fmt.Fprintln(w, "No playlists found.")
		return
	}

	t := newTable(w, table.Row{"ID", "Title", "Owner", "Tracks", "Length", "Sharing"})
	for _, p := range playlists {
		t.AppendRow(table.Row{
			color.HiBlackString(strconv.Itoa(p.ID)),
			bold.Sprint(clip(p.Title, titleWidth)),
			p.User.Username,
			len(p.Tracks),
			formatDuration(p.Duration),
			string(p.Sharing),
		})
	}
	t.Render()
}

func printPlaylist(w io.Writer, p soundcloud.Playlist) {
	fmt.Fprintf(w, "%s by %s (%s, %s)\n", bold.Sprint(p.Title), p.User.Username, p.Sharing, formatDuration(p.Duration))
	printTracks(w, p.Tracks)
}

func printComments(w io.Writer, comments []soundcloud.Comment) {
	if len(comments) == 0 {
		fmt.Fprintln(w, "No comments found.")
		return
	}

	t := newTable(w, table.Row{"At", "User", "Comment"})
	for _, c := range comments {
		user := strconv.Itoa(c.UserID)
		if c.User != nil {
			user = c.User.Username
		}
		t.AppendRow(table.Row{formatDuration(c.Timestamp), user, clip(c.Body, 60)})
	}
	t.Render()
}

func printActivities(w io.Writer, activities []soundcloud.Activity) {
	if len(activities) == 0 {
		fmt.Fprintln(w, "No activity.")
		return
	}

	t := newTable(w, table.Row{"Type", "ID", "Title", "By"})
	for _, a := range activities {
		switch {
		case a.Track != nil:
			t.AppendRow(table.Row{string(a.Kind), a.Track.ID, clip(a.Track.Title, titleWidth), a.Track.User.Username})
		case a.Playlist != nil:
			t.AppendRow(table.Row{string(a.Kind), a.Playlist.ID, clip(a.Playlist.Title, titleWidth), a.Playlist.User.Username})
		}
	}
	t.Render()
}

func printActions(w io.Writer, actions []outbox.Action) {
	if len(actions) == 0 {
		fmt.Fprintln(w, "Outbox is empty.")
		return
	}

	t := newTable(w, table.Row{"ID", "Action", "Target", "Status", "Attempts", "Queued", "Error"})
	for _, a := range actions {
		status := string(a.Status)
		switch a.Status {
		case outbox.StatusDone:
			status = color.GreenString(status)
		case outbox.StatusFailed:
			status = color.RedString(status)
		}
		t.AppendRow(table.Row{
			a.ID,
			string(a.Kind),
			a.TargetID,
			status,
			a.Attempts,
			a.CreatedAt.Local().Format(time.DateTime),
			clip(a.Error, 40),
		})
	}
	t.Render()
}

// formatTrack applies a Go template to the track
func formatTrack(track soundcloud.Track, templateStr string) (string, error) {
	tmpl, err := template.New("output").Funcs(template.FuncMap{
		"duration": formatDuration,
	}).Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, track); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}
