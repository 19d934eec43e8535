package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
	"github.com/SanjoDeundiak/suspendable-process/pkg/lib/codepage"
)

func printLaunch(w io.Writer, id string, st *lib.ProcessStatus) {
	state, pid := "", 0
	if st != nil {
		state, pid = st.State.String(), st.Pid
	}
	fmt.Fprintf(w, "%s pid=%d state=%s\n", id, pid, state)
}

func printCodePageTable(w io.Writer, infos []codepage.Info) {
	rows := make([][4]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, [4]string{
			strconv.FormatUint(uint64(info.ID), 10),
			info.Name,
			strconv.Itoa(info.MaxCharSize),
			leadBytes(info.LeadByteRanges),
		})
	}

	header := [4]string{"ID", "NAME", "MAX", "LEAD BYTES"}
	var widths [4]int
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], len(c))
		}
	}

	sep := "+"
	for _, wd := range widths {
		sep += "-" + strings.Repeat("-", wd) + "-+"
	}
	sep += "\n"

	line := func(r [4]string) {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n", pad(r[0], widths[0]), pad(r[1], widths[1]), pad(r[2], widths[2]), pad(r[3], widths[3]))
	}

	fmt.Fprint(w, sep)
	line(header)
	fmt.Fprint(w, sep)
	for _, r := range rows {
		line(r)
	}
	fmt.Fprint(w, sep)
}

func leadBytes(ranges []codepage.ByteRange) string {
	if len(ranges) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(ranges))
	for _, r := range ranges {
		parts = append(parts, fmt.Sprintf("%02X-%02X", r.Low, r.High))
	}
	return strings.Join(parts, " ")
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
