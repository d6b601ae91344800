package archive

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

var (
	xpProgram   = xpath.MustCompile("/URProgram")
	xpMoves     = xpath.MustCompile("//MainProgram/children/Move")
	xpSets      = xpath.MustCompile("//MainProgram/children/Set")
	xpWaypoint  = xpath.MustCompile("children/Waypoint")
	xpAngles    = xpath.MustCompile("position/JointAngles")
	xpPin       = xpath.MustCompile("pin")
	xpDigital   = xpath.MustCompile("digitalValue")
	xpKinematic = xpath.MustCompile("/URProgram/kinematics/*")
)

// Info summarizes a program archive.
type Info struct {
	Name        string            `json:"name"`
	CreatedIn   string            `json:"created_in"`
	LastSavedIn string            `json:"last_saved_in"`
	Kinematics  map[string]string `json:"kinematics"`
	Waypoints   []Waypoint        `json:"waypoints"`
	Outputs     []Output          `json:"outputs"`
}

// Waypoint is one Move element of the main program.
type Waypoint struct {
	Name   string    `json:"name"`
	Motion string    `json:"motion"`
	Angles []float64 `json:"angles"`
}

// Output is one Set element of the main program. Pin is the direct
// referencedName on the first output and the back-reference on later ones.
type Output struct {
	Pin   string `json:"pin"`
	Value bool   `json:"value"`
}

// Inspect decompresses an archive and summarizes its program tree.
func Inspect(r io.Reader) (*Info, error) {
	data, err := Decompress(r)
	if err != nil {
		return nil, err
	}
	return InspectXML(data)
}

// InspectXML summarizes an uncompressed archive document.
func InspectXML(data []byte) (*Info, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing archive XML: %w", err)
	}

	root := xmlquery.QuerySelector(doc, xpProgram)
	if root == nil {
		return nil, fmt.Errorf("parsing archive XML: no URProgram root")
	}

	info := &Info{
		Name:        root.SelectAttr("name"),
		CreatedIn:   root.SelectAttr("createdIn"),
		LastSavedIn: root.SelectAttr("lastSavedIn"),
		Kinematics:  map[string]string{},
	}
	for _, k := range xmlquery.QuerySelectorAll(doc, xpKinematic) {
		info.Kinematics[k.Data] = k.SelectAttr("value")
	}

	for _, mv := range xmlquery.QuerySelectorAll(doc, xpMoves) {
		wp := Waypoint{Motion: mv.SelectAttr("motionType")}
		if w := xmlquery.QuerySelector(mv, xpWaypoint); w != nil {
			wp.Name = w.SelectAttr("name")
			if ja := xmlquery.QuerySelector(w, xpAngles); ja != nil {
				angles, err := parseAngles(ja.SelectAttr("angles"))
				if err != nil {
					return nil, fmt.Errorf("waypoint %s: %w", wp.Name, err)
				}
				wp.Angles = angles
			}
		}
		info.Waypoints = append(info.Waypoints, wp)
	}

	for _, set := range xmlquery.QuerySelectorAll(doc, xpSets) {
		var out Output
		if pin := xmlquery.QuerySelector(set, xpPin); pin != nil {
			out.Pin = pin.SelectAttr("referencedName")
			if out.Pin == "" {
				out.Pin = pin.SelectAttr("reference")
			}
		}
		if dv := xmlquery.QuerySelector(set, xpDigital); dv != nil {
			out.Value = strings.TrimSpace(dv.InnerText()) == "1"
		}
		info.Outputs = append(info.Outputs, out)
	}

	return info, nil
}

func parseAngles(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("joint angles %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}
