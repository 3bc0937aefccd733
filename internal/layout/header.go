package layout

import (
	"strconv"

	"github.com/jfmyers9/chartfm/internal/chart"
)

// newPage builds the header shared by both modes: the controls, the
// title, the profile row and the subtitle.
func newPage(in Input, mode chart.Mode, width int) *Page {
	p := &Page{
		Mode:       mode,
		Width:      width,
		Background: ColorBackground,
		Title:      "Last.fm Charts",
		Subtitle:   in.Request.Type.Label() + " - " + in.Request.Period.Label(),
		Column:     in.Request.Type.Column(),
		ShowArtist: in.Request.Type.HasArtist(),
		User:       in.User,
	}

	p.add(Element{
		Kind:   KindBox,
		Role:   RoleBack,
		Rect:   Rect{padding, padding, buttonSize, buttonSize},
		Fill:   ColorButton,
		Text:   "←",
		Link:   "/",
		Round:  true,
		Ignore: true,
	})
	p.add(Element{
		Kind:   KindBox,
		Role:   RoleDownload,
		Rect:   Rect{width - padding - buttonSize, padding, buttonSize, buttonSize},
		Fill:   ColorButton,
		Text:   "↓",
		Round:  true,
		Ignore: true,
	})

	p.add(Element{
		Kind:  KindText,
		Role:  RoleTitle,
		Rect:  Rect{0, padding, width, titleHeight},
		Text:  p.Title,
		Style: TextStyle{Size: 28, Bold: true, Color: ColorAccent, Align: AlignCenter},
	})

	// Profile row: avatar, name and scrobble count grouped around the
	// centre line.
	mid := width / 2
	profileLink := in.User.URL
	p.add(Element{
		Kind:  KindImage,
		Role:  RoleAvatar,
		Rect:  Rect{mid - 160, profileTop, profileHeight, profileHeight},
		Src:   in.User.ImageURL,
		Link:  profileLink,
		Round: true,
	})
	p.add(Element{
		Kind:  KindText,
		Role:  RoleUsername,
		Rect:  Rect{mid - 88, profileTop, 168, profileHeight},
		Text:  in.User.Name,
		Link:  profileLink,
		Style: TextStyle{Size: 22, Bold: true, Color: ColorText, Align: AlignLeft},
	})
	p.add(Element{
		Kind:  KindText,
		Role:  RoleScrobbles,
		Rect:  Rect{mid + 80, profileTop + 8, 100, profileHeight/2 - 8},
		Text:  strconv.Itoa(in.User.Playcount),
		Style: TextStyle{Size: 14, Bold: true, Color: ColorText, Align: AlignCenter},
	})
	p.add(Element{
		Kind:  KindText,
		Role:  RoleScrobbles,
		Rect:  Rect{mid + 80, profileTop + profileHeight/2, 100, profileHeight/2 - 8},
		Text:  "scrobbles",
		Style: TextStyle{Size: 12, Color: ColorMuted, Align: AlignCenter},
	})

	p.add(Element{
		Kind:  KindText,
		Role:  RoleSubtitle,
		Rect:  Rect{0, subtitleTop, width, subtitleH},
		Text:  p.Subtitle,
		Style: TextStyle{Size: 22, Bold: true, Color: ColorText, Align: AlignCenter},
	})

	return p
}

// finish sets the page height and appends the loading overlay.
func (p *Page) finish(in Input, contentBottom int) *Page {
	p.Height = contentBottom + padding
	if in.Loading {
		p.add(Element{
			Kind:   KindBox,
			Role:   RoleLoading,
			Rect:   Rect{0, 0, p.Width, p.Height},
			Fill:   ColorScrim,
			Text:   "Loading…",
			Ignore: true,
		})
	}
	return p
}
