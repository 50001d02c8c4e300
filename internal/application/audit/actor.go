package audit

type actorKind int

const (
	actorSystem actorKind = iota
	actorUser
	actorSubject
)

// Actor quien ejecuta una mutación. Cada llamada al coordinador lo declara explícitamente.
type Actor struct {
	kind actorKind
	id   string
}

// UserActor administrador autenticado identificado por id.
func UserActor(id string) Actor {
	if id == "" {
		return SystemActor()
	}
	return Actor{kind: actorUser, id: id}
}

// SystemActor acción iniciada por el propio sistema (semillas, tareas internas).
func SystemActor() Actor {
	return Actor{kind: actorSystem}
}

// SubjectActor el actor es la entidad creada por la operación (auto-registro).
// Requiere Mutation.Subject.
func SubjectActor() Actor {
	return Actor{kind: actorSubject}
}

// IsSystem indica si no hay actor autenticado.
func (a Actor) IsSystem() bool { return a.kind == actorSystem }

// IsSubject indica si el actor se resuelve a partir del resultado.
func (a Actor) IsSubject() bool { return a.kind == actorSubject }

// ID id del administrador; vacío para sistema o sujeto.
func (a Actor) ID() string { return a.id }

func (a Actor) String() string {
	switch a.kind {
	case actorUser:
		return "user:" + a.id
	case actorSubject:
		return "subject"
	default:
		return "system"
	}
}
