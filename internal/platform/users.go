package platform

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

const (
	etcPasswd = "etc/passwd"
	etcGroup  = "etc/group"
)

type groupEntry struct {
	name    string
	gid     uint32
	members []string
}

// parseGroup parses group(5) lines: name:password:GID:member,member.
func parseGroup(lines []string) []groupEntry {
	var groups []groupEntry
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 4 {
			continue
		}
		gid, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			continue
		}
		g := groupEntry{name: fields[0], gid: uint32(gid)}
		for _, m := range strings.Split(fields[3], ",") {
			if m = strings.TrimSpace(m); m != "" {
				g.members = append(g.members, m)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// parsePasswd parses passwd(5) lines: name:password:UID:GID:GECOS:dir:shell.
// Groups hold the primary group followed by supplementary groups.
func parsePasswd(lines []string, groups []groupEntry) []UserSample {
	var users []UserSample
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 || fields[0] == "" {
			continue
		}
		uid, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			continue
		}
		gid, err := strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			continue
		}
		u := UserSample{Name: fields[0], UID: uint32(uid), GID: uint32(gid)}
		for _, g := range groups {
			if g.gid == u.GID {
				u.Groups = append([]string{g.name}, u.Groups...)
				continue
			}
			for _, m := range g.members {
				if m == u.Name {
					u.Groups = append(u.Groups, g.name)
					break
				}
			}
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}

// readUsers reads the local account database from fsys. A missing group
// file leaves users without group names.
func readUsers(fsys fs.ReadFileFS) ([]UserSample, error) {
	passwd, err := readLines(fsys, etcPasswd)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	var groups []groupEntry
	if lines, err := readLines(fsys, etcGroup); err == nil {
		groups = parseGroup(lines)
	}
	return parsePasswd(passwd, groups), nil
}

func (b *linuxBackend) Users(ctx context.Context) ([]UserSample, error) {
	return readUsers(b.fsys)
}
