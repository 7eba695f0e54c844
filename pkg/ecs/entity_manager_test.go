package ecs

import (
	"reflect"
	"testing"
)

// 测试组件类型定义
type testPinComponent struct {
	Index   int
	Knocked bool
}

type testBodyComponent struct {
	X, Y, Z float64
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	ball := em.CreateEntity()
	pin := em.CreateEntity()

	// ID 从 1 开始递增，0 保留为无效 ID
	if ball != 1 || pin != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", ball, pin)
	}
	if em.EntityCount() != 2 {
		t.Errorf("expected 2 entities, got %d", em.EntityCount())
	}
}

func TestComponentLifecycle(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	pinType := reflect.TypeOf(&testPinComponent{})

	if em.HasComponent(id, pinType) {
		t.Fatal("should not have component before adding")
	}

	em.AddComponent(id, &testPinComponent{Index: 3})
	comp, found := em.GetComponent(id, pinType)
	if !found {
		t.Fatal("component should be found")
	}
	if comp.(*testPinComponent).Index != 3 {
		t.Errorf("expected pin index 3, got %d", comp.(*testPinComponent).Index)
	}

	// 同类型组件替换
	em.AddComponent(id, &testPinComponent{Index: 7})
	comp, _ = em.GetComponent(id, pinType)
	if comp.(*testPinComponent).Index != 7 {
		t.Errorf("expected replaced pin index 7, got %d", comp.(*testPinComponent).Index)
	}

	em.RemoveComponent(id, pinType)
	if em.HasComponent(id, pinType) {
		t.Error("component should be removed")
	}
}

func TestAddComponentToUnknownEntity(t *testing.T) {
	em := NewEntityManager()
	em.AddComponent(EntityID(42), &testPinComponent{})
	if em.Exists(EntityID(42)) {
		t.Error("adding a component must not create the entity")
	}
}

func TestDestroyEntity_Deferred(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	em.AddComponent(id, &testBodyComponent{})

	em.DestroyEntity(id)
	if !em.Exists(id) {
		t.Error("entity should still exist before cleanup")
	}

	em.RemoveMarkedEntities()
	if em.Exists(id) {
		t.Error("entity should be removed after cleanup")
	}
}

func TestGetEntitiesWith_SortedAndFiltered(t *testing.T) {
	em := NewEntityManager()

	ids := make([]EntityID, 0, 10)
	for i := 0; i < 10; i++ {
		id := em.CreateEntity()
		em.AddComponent(id, &testPinComponent{Index: i})
		em.AddComponent(id, &testBodyComponent{})
		ids = append(ids, id)
	}
	ball := em.CreateEntity()
	em.AddComponent(ball, &testBodyComponent{})

	pins := em.GetEntitiesWith(reflect.TypeOf(&testPinComponent{}), reflect.TypeOf(&testBodyComponent{}))
	if len(pins) != 10 {
		t.Fatalf("expected 10 pins, got %d", len(pins))
	}
	for i, id := range pins {
		if id != ids[i] {
			t.Fatalf("expected ascending ids, got %v", pins)
		}
	}

	bodies := em.GetEntitiesWith(reflect.TypeOf(&testBodyComponent{}))
	if len(bodies) != 11 || bodies[10] != ball {
		t.Errorf("expected 11 bodies ending with ball, got %v", bodies)
	}
}

func TestGenericHelpers(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testPinComponent{Index: 5})
	AddComponent(em, id, &testBodyComponent{Z: -15})

	pin, ok := GetComponent[*testPinComponent](em, id)
	if !ok || pin.Index != 5 {
		t.Fatalf("GetComponent returned %+v, %v", pin, ok)
	}
	if !HasComponent[*testBodyComponent](em, id) {
		t.Error("HasComponent should report body component")
	}
	if got := GetEntitiesWith2[*testPinComponent, *testBodyComponent](em); len(got) != 1 || got[0] != id {
		t.Errorf("GetEntitiesWith2 returned %v", got)
	}

	RemoveComponent[*testBodyComponent](em, id)
	if _, ok := GetComponent[*testBodyComponent](em, id); ok {
		t.Error("body component should be removed")
	}
	if got := GetEntitiesWith1[*testPinComponent](em); len(got) != 1 {
		t.Errorf("GetEntitiesWith1 returned %v", got)
	}
}

func TestRemoveMarkedEntities_DropsComponents(t *testing.T) {
	em := NewEntityManager()
	keep := em.CreateEntity()
	drop := em.CreateEntity()
	for _, id := range []EntityID{keep, drop} {
		em.AddComponent(id, &testPinComponent{})
	}

	em.DestroyEntity(drop)
	em.RemoveMarkedEntities()

	got := GetEntitiesWith1[*testPinComponent](em)
	if len(got) != 1 || got[0] != keep {
		t.Errorf("expected only %d left, got %v", keep, got)
	}
	if _, ok := GetComponent[*testPinComponent](em, drop); ok {
		t.Error("destroyed entity should lose its components")
	}
}

func TestGetEntitiesWith_NoTypes(t *testing.T) {
	em := NewEntityManager()
	a := em.CreateEntity()
	b := em.CreateEntity()

	got := em.GetEntitiesWith()
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("expected all entities in order, got %v", got)
	}
	if got := em.GetEntitiesWith(reflect.TypeOf(&testPinComponent{})); len(got) != 0 {
		t.Errorf("unknown column should match nothing, got %v", got)
	}
}
