package geom

import "github.com/go-gl/mathgl/mgl64"

// Loc is an integer rigid transform: rotate by R, then translate by P.
type Loc struct {
	P Vec3i
	R Rot
}

// Ident is the identity transform. The zero Loc is not usable since its R is
// the zero matrix.
func Ident() Loc { return Loc{R: Identity} }

func Translation(p Vec3i) Loc { return Loc{P: p, R: Identity} }

func Rotation(r Rot) Loc { return Loc{R: r} }

func (l Loc) Apply(v Vec3i) Vec3i { return l.R.Apply(v).Add(l.P) }

// Mul composes so that l.Mul(o).Apply(v) == l.Apply(o.Apply(v)).
func (l Loc) Mul(o Loc) Loc {
	return Loc{P: l.Apply(o.P), R: l.R.Mul(o.R)}
}

func (l Loc) Inverse() Loc {
	ri := l.R.Inverse()
	return Loc{P: ri.Apply(l.P).Neg(), R: ri}
}

// DLoc converts to a float transform. l.R must be a proper rotation.
func (l Loc) DLoc() DLoc { return DLoc{P: l.P.Float(), Q: l.R.Quat()} }

// DLoc is a float position and orientation.
type DLoc struct {
	P mgl64.Vec3
	Q mgl64.Quat
}

func DIdent() DLoc { return DLoc{Q: mgl64.QuatIdent()} }

func DAt(p mgl64.Vec3) DLoc { return DLoc{P: p, Q: mgl64.QuatIdent()} }

func (l DLoc) Apply(v mgl64.Vec3) mgl64.Vec3 { return l.Q.Rotate(v).Add(l.P) }

func (l DLoc) Mul(o DLoc) DLoc {
	return DLoc{P: l.Apply(o.P), Q: l.Q.Mul(o.Q).Normalize()}
}

func (l DLoc) Inverse() DLoc {
	qi := l.Q.Inverse()
	return DLoc{P: qi.Rotate(l.P).Mul(-1), Q: qi}
}

// Translate moves the position by v without changing orientation.
func (l DLoc) Translate(v mgl64.Vec3) DLoc { return DLoc{P: l.P.Add(v), Q: l.Q} }
