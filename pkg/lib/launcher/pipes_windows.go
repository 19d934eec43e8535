//go:build windows

package launcher

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/SanjoDeundiak/suspendable-process/pkg/lib"
)

// pipePair holds both ends of one standard stream. When owned is false the
// child end is a pass-through handle of this process and is never closed.
type pipePair struct {
	parent windows.Handle
	child  windows.Handle
	owned  bool
}

// stdioSet is the stdin, stdout and stderr plumbing of one launch.
type stdioSet struct {
	sys   *syscalls
	pairs [3]pipePair
}

var stdHandles = [3]uint32{windows.STD_INPUT_HANDLE, windows.STD_OUTPUT_HANDLE, windows.STD_ERROR_HANDLE}

// openStdio creates a pipe for every redirected stream and binds the others
// to this process's own standard handles. On failure every handle created so
// far is closed.
func openStdio(sys *syscalls, r lib.Redirect) (*stdioSet, error) {
	s := &stdioSet{sys: sys}
	redirect := [3]bool{r.Stdin, r.Stdout, r.Stderr}
	for i := range s.pairs {
		if !redirect[i] {
			// A process without a console has NULL std handles, which is not an error.
			h, err := sys.getStdHandle(stdHandles[i])
			if err != nil {
				s.closeChild()
				s.closeParent()
				return nil, lib.NewError(lib.KindPipe, "GetStdHandle", err)
			}
			s.pairs[i] = pipePair{child: h}
			continue
		}
		parent, child, err := s.makeRedirectedPair(i == 0)
		if err != nil {
			s.closeChild()
			s.closeParent()
			return nil, err
		}
		s.pairs[i] = pipePair{parent: parent, child: child, owned: true}
	}
	return s, nil
}

// makeRedirectedPair creates an inheritable pipe and replaces the parent's
// end with a non-inheritable duplicate. For input the child reads and the
// parent writes; otherwise the child writes and the parent reads.
func (s *stdioSet) makeRedirectedPair(forInput bool) (parent, child windows.Handle, err error) {
	sa := &windows.SecurityAttributes{InheritHandle: 1}
	sa.Length = uint32(unsafe.Sizeof(*sa))

	var r, w windows.Handle
	if err := s.sys.createPipe(&r, &w, sa, 0); err != nil {
		return 0, 0, lib.NewError(lib.KindPipe, "CreatePipe", err)
	}
	tmp, child := r, w
	if forInput {
		tmp, child = w, r
	}

	self := windows.CurrentProcess()
	err = s.sys.duplicateHandle(self, tmp, self, &parent, 0, false, windows.DUPLICATE_SAME_ACCESS)
	s.sys.closeHandle(tmp)
	if err != nil {
		s.sys.closeHandle(child)
		return 0, 0, lib.NewError(lib.KindPipe, "DuplicateHandle", err)
	}
	return parent, child, nil
}

func (s *stdioSet) child(i int) windows.Handle {
	return s.pairs[i].child
}

func (s *stdioSet) parent(i int) windows.Handle {
	return s.pairs[i].parent
}

// closeChild closes the child ends this launch created. It runs once the
// child has inherited them, or when creation failed.
func (s *stdioSet) closeChild() {
	for i := range s.pairs {
		if p := &s.pairs[i]; p.owned && p.child != 0 {
			s.sys.closeHandle(p.child)
			p.child = 0
		}
	}
}

func (s *stdioSet) closeParent() {
	for i := range s.pairs {
		if p := &s.pairs[i]; p.owned && p.parent != 0 {
			s.sys.closeHandle(p.parent)
			p.parent = 0
		}
	}
}
