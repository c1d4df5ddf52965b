package plan_test

const samplePlan = `
name: feather-run
context: PRE_TASK
priority: RECOMMENDED
items:
  - id: 995
    name: Coins
    stackable: true
  - id: 314
    name: Feather
    stackable: true
    source: {name: Gerrant, kind: SHOP, location: {x: 3014, y: 3229}}
  - id: 1155
    name: Bronze full helm
    slot: HEAD
  - id: 556
    name: Air rune
    stackable: true
  - id: 526
    name: Bones
requirements:
  - kind: SPELLBOOK
    book: STANDARD
    priority: MANDATORY
  - kind: ITEM
    item: Bronze full helm
    placement: EQUIPMENT
    rating: 6
  - kind: SHOP
    operation: BUY
    priority: MANDATORY
    demands:
      - {item: Feather, amount: 100, base_stock: 1000, tolerance: 50, max_price: 4}
  - kind: RUNE_POUCH
    runes: {Air rune: 300}
  - kind: CONDITIONAL
    name: bones
    steps:
      - name: bury
        when: {carrying: Bones}
        then: {kind: LOCATION, name: altar, location: {x: 10, y: 10}, tolerance: 2}
      - name: gather
        then: {kind: LOOT, loot: [Bones], amount: 5, radius: 8}
  - kind: OR
    context: BOTH
    children:
      - {kind: ITEM, item: Feather, amount: 10, placement: INVENTORY}
      - {kind: ITEM, item: Bones, placement: INVENTORY, inventory_slot: 0}
external:
  - kind: LOCATION
    name: bank
    location: {x: 3093, y: 3243}
    context: POST_TASK
world:
  position: {x: 3000, y: 3200}
  inventory: {Coins: 5000}
  worlds: [301, 302]
  shops:
    - name: Gerrant
      stock: {Feather: 1100}
`
